// ABOUTME: Upload screen: pick a file, describe it, confirm, then send it
// ABOUTME: Steps are shown in a progress box; huh forms collect the details

package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/media"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/filepicker"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
	"github.com/materialhub/materialhub-cli/internal/tui/theme"
)

// Uploader sends the multipart upload
type Uploader interface {
	Upload(ctx context.Context, req client.UploadRequest) (*models.Material, error)
}

// Catalogs provides category and map choices
type Catalogs interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Recent remembers files that were uploaded
type Recent interface {
	List() []string
	Add(path string) error
}

type step int

const (
	stepFile step = iota + 1
	stepDetails
	stepConfirm
	stepUploading
	stepDone
)

// Step names for progress indicator
var stepNames = []string{"File", "Details", "Confirm"}

type catalogLoadedMsg struct {
	cat *catalog.Catalog
	err error
}

type uploadDoneMsg struct {
	material *models.Material
	err      error
}

// Upload is the /upload screen
type Upload struct {
	ctx      context.Context
	uploader Uploader
	catalogs Catalogs
	recent   Recent

	step    step
	picker  *filepicker.FilePicker
	form    *huh.Form
	catalog *catalog.Catalog
	info    media.Info

	// Form field values
	title       string
	category    string
	mapName     string
	description string
	tags        string
	confirmed   bool

	result  *models.Material
	err     error
	warning string // recent list could not be saved
	width   int
}

// New creates the screen at the file step
func New(ctx context.Context, uploader Uploader, catalogs Catalogs, recent Recent) *Upload {
	u := &Upload{ctx: ctx, uploader: uploader, catalogs: catalogs, recent: recent}
	u.reset()
	return u
}

func (u *Upload) reset() {
	u.step = stepFile
	u.picker = filepicker.New(u.recent.List())
	u.form = nil
	u.info = media.Info{}
	u.title, u.category, u.mapName, u.description, u.tags = "", "", "", "", ""
	u.confirmed = false
	u.result, u.err, u.warning = nil, nil, ""
	if u.width > 0 {
		u.picker.Update(tea.WindowSizeMsg{Width: u.width})
	}
}

func (u *Upload) Init() tea.Cmd {
	return u.loadCatalog()
}

func (u *Upload) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		cat, err := u.catalogs.Load(u.ctx)
		return catalogLoadedMsg{cat: cat, err: err}
	}
}

// Capturing reports whether a text field has focus
func (u *Upload) Capturing() bool {
	switch u.step {
	case stepFile:
		return u.picker.Capturing()
	case stepDetails, stepConfirm:
		return true
	}
	return false
}

func (u *Upload) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		u.width = msg.Width
		u.picker.Update(msg)
		return u, u.updateForm(msg)

	case catalogLoadedMsg:
		if msg.err != nil {
			u.err = msg.err
			return u, nil
		}
		u.catalog = msg.cat
		if u.step == stepDetails {
			// Rebuild so the category select gets its options
			u.form = u.detailsForm()
			return u, u.form.Init()
		}
		return u, nil

	case filepicker.FileSelectedMsg:
		u.info = msg.Info
		if u.title == "" {
			u.title = strings.TrimSuffix(u.info.Name, filepath.Ext(u.info.Name))
		}
		u.step = stepDetails
		u.form = u.detailsForm()
		return u, u.form.Init()

	case filepicker.CancelledMsg:
		return u, screen.Navigate(router.HomePath)

	case uploadDoneMsg:
		if msg.err != nil {
			u.err = msg.err
			u.step = stepConfirm
			u.form = u.confirmForm()
			return u, u.form.Init()
		}
		u.result = msg.material
		u.step = stepDone
		if err := u.recent.Add(u.info.Path); err != nil {
			u.warning = "Could not remember this file: " + err.Error()
		}
		return u, nil

	case tea.KeyMsg:
		if cmd, handled := u.handleKey(msg); handled {
			return u, cmd
		}
	}

	switch u.step {
	case stepFile:
		_, cmd := u.picker.Update(msg)
		return u, cmd
	case stepDetails, stepConfirm:
		cmd := u.updateForm(msg)
		if u.form.State == huh.StateCompleted {
			return u, u.advanceStep()
		}
		return u, cmd
	}
	return u, nil
}

func (u *Upload) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch u.step {
	case stepDetails:
		if msg.String() == "esc" {
			u.step = stepFile
			u.form = nil
			return nil, true
		}
	case stepConfirm:
		if msg.String() == "esc" {
			u.step = stepDetails
			u.form = u.detailsForm()
			return u.form.Init(), true
		}
	case stepUploading:
		return nil, true
	case stepDone:
		switch msg.String() {
		case "u":
			u.reset()
			return nil, true
		case "b", "esc":
			return screen.Navigate(router.HomePath), true
		}
		return nil, true
	}
	return nil, false
}

func (u *Upload) updateForm(msg tea.Msg) tea.Cmd {
	if u.form == nil {
		return nil
	}
	form, cmd := u.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		u.form = f
	}
	return cmd
}

func (u *Upload) advanceStep() tea.Cmd {
	switch u.step {
	case stepDetails:
		u.step = stepConfirm
		u.confirmed = true
		u.form = u.confirmForm()
		return u.form.Init()

	case stepConfirm:
		if !u.confirmed {
			u.step = stepDetails
			u.form = u.detailsForm()
			return u.form.Init()
		}
		u.step = stepUploading
		u.err = nil
		return u.send()
	}
	return nil
}

// send opens the picked file and uploads it with the collected details
func (u *Upload) send() tea.Cmd {
	req := client.UploadRequest{
		Title:       strings.TrimSpace(u.title),
		Category:    u.category,
		Description: strings.TrimSpace(u.description),
		MapName:     strings.TrimSpace(u.mapName),
		Tags:        NormalizeTags(u.tags),
		FileName:    u.info.Name,
	}
	path := u.info.Path
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{err: err}
		}
		defer f.Close()
		req.File = f
		m, err := u.uploader.Upload(u.ctx, req)
		return uploadDoneMsg{material: m, err: err}
	}
}

// NormalizeTags trims comma separated tags and drops empty ones
func NormalizeTags(raw string) string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return strings.Join(tags, ",")
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (u *Upload) detailsForm() *huh.Form {
	var category huh.Field
	if u.catalog != nil && len(u.catalog.Categories) > 0 {
		opts := make([]huh.Option[string], 0, len(u.catalog.Categories))
		for _, c := range u.catalog.Categories {
			opts = append(opts, huh.NewOption(c.Label, c.Value))
		}
		if u.category == "" {
			u.category = u.catalog.Categories[0].Value
		}
		category = huh.NewSelect[string]().
			Title("Category").
			Options(opts...).
			Value(&u.category)
	} else {
		category = huh.NewInput().
			Title("Category").
			Description("Categories are still loading; type the value").
			Value(&u.category).
			Validate(required)
	}

	mapInput := huh.NewInput().
		Title("Map").
		Placeholder("optional").
		Value(&u.mapName)
	if u.catalog != nil {
		mapInput.Suggestions(u.catalog.Maps)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(200).
				Value(&u.title).
				Validate(required),
			category,
			mapInput,
			huh.NewText().
				Title("Description").
				CharLimit(2000).
				Lines(3).
				Value(&u.description),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(&u.tags),
		).Title("Describe " + u.info.Name),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

func (u *Upload) confirmForm() *huh.Form {
	desc := "New materials wait for moderator approval"
	if !u.info.OK() {
		desc = "Warning: " + strings.Join(u.info.Warnings, "; ") + ". The server may reject this file."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Upload " + u.info.Name + "?").
				Description(desc).
				Affirmative("Upload").
				Negative("Edit").
				Value(&u.confirmed),
		),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

func (u *Upload) View() string {
	var b strings.Builder
	b.WriteString(u.renderProgress())
	b.WriteString("\n\n")

	switch u.step {
	case stepFile:
		b.WriteString(u.picker.View())
	case stepDetails:
		b.WriteString(u.fileSummary())
		b.WriteString("\n\n")
		b.WriteString(u.form.View())
	case stepConfirm:
		b.WriteString(u.summary())
		b.WriteString("\n\n")
		b.WriteString(u.form.View())
	case stepUploading:
		b.WriteString(u.summary())
		b.WriteString("\n\nUploading " + u.info.Name + "...")
	case stepDone:
		b.WriteString(u.doneView())
	}

	if u.err != nil && u.step != stepDone {
		b.WriteString("\n" + styles.StatusCritical.Render("Error: "+screen.ErrorText(u.err)))
	}
	return b.String()
}

func (u *Upload) fileSummary() string {
	line := fmt.Sprintf("%s %s  %s", icons.ForFileType(u.info.FileType), u.info.Name, media.HumanSize(u.info.Size))
	if !u.info.OK() {
		line += "  " + styles.StatusWarning.Render(icons.Warning.String()+" "+strings.Join(u.info.Warnings, "; "))
	}
	return line
}

func (u *Upload) summary() string {
	category := u.category
	if u.catalog != nil {
		category = u.catalog.Label(u.category)
	}
	lines := []string{
		u.fileSummary(),
		styles.KeyValue("Title", strings.TrimSpace(u.title)),
		styles.KeyValue("Category", category),
	}
	if m := strings.TrimSpace(u.mapName); m != "" {
		lines = append(lines, styles.KeyValue("Map", m))
	}
	if t := NormalizeTags(u.tags); t != "" {
		lines = append(lines, styles.KeyValue("Tags", t))
	}
	return strings.Join(lines, "\n")
}

func (u *Upload) doneView() string {
	var b strings.Builder
	b.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Uploaded " + u.result.Title))
	b.WriteString("\n")
	b.WriteString(styles.KeyValue("ID", fmt.Sprint(u.result.ID)))
	b.WriteString("\n")
	if u.result.IsApproved {
		b.WriteString("The material is live.")
	} else {
		b.WriteString(styles.StatusWarning.Render(icons.Pending.String() + " Waiting for a moderator to approve it."))
	}
	if u.warning != "" {
		b.WriteString("\n" + styles.Subtitle.Render(u.warning))
	}
	return b.String()
}

// renderProgress draws the step indicator box
func (u *Upload) renderProgress() string {
	width := max(u.width-1, 60)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	current := min(int(u.step), len(stepNames))
	done := u.step > stepConfirm

	var steps []string
	for i, name := range stepNames {
		n := i + 1
		var indicator string
		var nameStyle lipgloss.Style
		switch {
		case n < current || done:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case n == current:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		steps = append(steps, indicator+" "+nameStyle.Render(name))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │"
	barWidth := width - 5
	filled := current * barWidth / len(stepNames)
	if !done {
		filled = (current - 1) * barWidth / len(stepNames)
	}
	bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filled))

	title := "Upload"
	top := "┌─ " + lipgloss.NewStyle().Foreground(styles.Primary).Render(title) + " " +
		strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"
	stepsRow := "│ " + stepsLine + strings.Repeat(" ", max(0, width-4-lipgloss.Width(stepsLine))) + " │"
	barRow := "│  " + bar + " │"
	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{top, stepsRow, barRow, bottom}, "\n"))
}

func (u *Upload) Shortcuts() []string {
	switch u.step {
	case stepFile:
		return []string{"↑/↓ Select", "Enter Choose", "Esc Back"}
	case stepDetails:
		return []string{"Tab Next field", "Enter Continue", "Esc Change file"}
	case stepConfirm:
		return []string{"←/→ Choose", "Enter Confirm", "Esc Edit"}
	case stepDone:
		return []string{"u Upload another", "b Home"}
	}
	return nil
}
