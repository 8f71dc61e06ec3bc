// ABOUTME: File picker for choosing a media file to upload
// ABOUTME: Shows recently uploaded files and a path input; files are checked before they are accepted

package filepicker

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/media"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
)

type state int

const (
	stateList state = iota
	stateInput
)

// FileSelectedMsg is sent when a readable file is chosen. Info may carry
// advisory warnings; the caller decides whether to continue.
type FileSelectedMsg struct {
	Info media.Info
}

// CancelledMsg is sent when the user backs out
type CancelledMsg struct{}

// FilePicker is the file selection component
type FilePicker struct {
	recentFiles []string
	cursor      int
	state       state
	textInput   textinput.Model
	err         string
	width       int
}

// New creates a FilePicker offering recentFiles first
func New(recentFiles []string) *FilePicker {
	ti := textinput.New()
	ti.Placeholder = "~/clips/smoke.mp4"
	ti.CharLimit = 512
	ti.Width = 60

	return &FilePicker{
		recentFiles: recentFiles,
		state:       stateList,
		textInput:   ti,
	}
}

// Init implements tea.Model
func (fp *FilePicker) Init() tea.Cmd {
	return nil
}

// Capturing reports whether the path input has focus
func (fp *FilePicker) Capturing() bool {
	return fp.state == stateInput
}

// Update implements tea.Model
func (fp *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fp.width = msg.Width
		return fp, nil

	case tea.KeyMsg:
		fp.err = ""
		if fp.state == stateInput {
			return fp.updateInput(msg)
		}
		return fp.updateList(msg)
	}

	if fp.state == stateInput {
		var cmd tea.Cmd
		fp.textInput, cmd = fp.textInput.Update(msg)
		return fp, cmd
	}
	return fp, nil
}

func (fp *FilePicker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxItems := len(fp.recentFiles) + 1 // +1 for "Enter path..."

	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < maxItems-1 {
			fp.cursor++
		}
	case "enter":
		if fp.cursor < len(fp.recentFiles) {
			return fp.pick(fp.recentFiles[fp.cursor])
		}
		fp.state = stateInput
		return fp, fp.textInput.Focus()
	case "esc", "b":
		return fp, func() tea.Msg { return CancelledMsg{} }
	}
	return fp, nil
}

func (fp *FilePicker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textInput.Blur()
		fp.textInput.SetValue("")
		return fp, nil
	case "enter":
		path := strings.TrimSpace(fp.textInput.Value())
		if path == "" {
			fp.err = "Please enter a file path"
			return fp, nil
		}
		return fp.pick(path)
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

// pick inspects path and reports it when it is a readable file
func (fp *FilePicker) pick(path string) (tea.Model, tea.Cmd) {
	info, err := media.Inspect(ExpandPath(path))
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fp.err = "File not found: " + path
		case errors.Is(err, fs.ErrPermission):
			fp.err = "Cannot read file: permission denied"
		default:
			fp.err = err.Error()
		}
		return fp, nil
	}
	return fp, func() tea.Msg { return FileSelectedMsg{Info: info} }
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// SetError sets an error message to display
func (fp *FilePicker) SetError(msg string) {
	fp.err = msg
}

// View implements tea.Model
func (fp *FilePicker) View() string {
	var b strings.Builder

	if fp.state == stateInput {
		b.WriteString(styles.Title.Render("Enter file path"))
		b.WriteString("\n")
		b.WriteString(fp.textInput.View())
		b.WriteString("\n")
		b.WriteString(styles.Help.Render("Accepted: " + strings.Join(media.AllowedExtensions(), " ")))
	} else {
		b.WriteString(styles.Title.Render("Select a file to upload"))
		b.WriteString("\n")
		fp.viewList(&b)
	}

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + fp.err))
	}
	return b.String()
}

func (fp *FilePicker) viewList(b *strings.Builder) {
	if len(fp.recentFiles) > 0 {
		b.WriteString(styles.Subtitle.Render("Recent uploads:"))
		b.WriteString("\n")
		for i, path := range fp.recentFiles {
			b.WriteString(fp.row(i, shorten(path, fp.width-10)))
		}
		b.WriteString(styles.Disabled.Render(strings.Repeat("─", clamp(fp.width-4, 20, 40))))
		b.WriteString("\n")
	}
	b.WriteString(fp.row(len(fp.recentFiles), "Enter path..."))
}

func (fp *FilePicker) row(i int, text string) string {
	if i == fp.cursor {
		return "> " + styles.Selected.Render(text) + "\n"
	}
	return "  " + styles.Normal.Render(text) + "\n"
}

// shorten keeps the tail of long paths, where the file name is
func shorten(path string, width int) string {
	r := []rune(path)
	if width < 20 || len(r) <= width {
		return path
	}
	return "..." + string(r[len(r)-(width-3):])
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
