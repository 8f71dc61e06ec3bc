// ABOUTME: Material detail screen showing metadata, the file link and a like action
// ABOUTME: The id comes from the /materials/{id} route parameter

package materials

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
	"github.com/materialhub/materialhub-cli/internal/tui/widgets"
)

type materialLoadedMsg struct {
	material *models.Material
	err      error
}

type likedMsg struct {
	likes int
	err   error
}

// Detail is the /materials/{id} screen
type Detail struct {
	ctx     context.Context
	src     Source
	fileURL func(filePath string) string
	id      int

	material *models.Material
	err      error
	status   string
	liking   bool
}

// NewDetail builds the screen for id. fileURL turns a stored file path
// into a downloadable link.
func NewDetail(ctx context.Context, src Source, fileURL func(string) string, id int) *Detail {
	return &Detail{ctx: ctx, src: src, fileURL: fileURL, id: id}
}

// ParseID reads the id route parameter
func ParseID(params map[string]string) (int, error) {
	id, err := strconv.Atoi(params["id"])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid material id %q", params["id"])
	}
	return id, nil
}

func (d *Detail) Init() tea.Cmd {
	return func() tea.Msg {
		m, err := d.src.Get(d.ctx, d.id)
		return materialLoadedMsg{material: m, err: err}
	}
}

func (d *Detail) like() tea.Cmd {
	d.liking = true
	return func() tea.Msg {
		res, err := d.src.Like(d.ctx, d.id)
		if err != nil {
			return likedMsg{err: err}
		}
		return likedMsg{likes: res.Likes}
	}
}

func (d *Detail) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case materialLoadedMsg:
		d.material, d.err = msg.material, msg.err
		return d, nil

	case likedMsg:
		d.liking = false
		if msg.err != nil {
			d.status = styles.StatusCritical.Render("Like failed: " + screen.ErrorText(msg.err))
			return d, nil
		}
		if d.material != nil {
			d.material.Likes = msg.likes
		}
		d.status = styles.StatusOK.Render(icons.Like.String() + " Liked")
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			if d.material != nil && !d.liking {
				return d, d.like()
			}
		case "r":
			d.status = ""
			return d, d.Init()
		case "b", "esc":
			return d, screen.Navigate("/materials")
		}
	}
	return d, nil
}

func (d *Detail) View() string {
	if d.err != nil {
		return styles.StatusCritical.Render("Error: " + screen.ErrorText(d.err))
	}
	if d.material == nil {
		return "Loading material..."
	}

	m := d.material
	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.ForFileType(m.FileType).String() + " " + m.Title))
	b.WriteString("\n")
	b.WriteString(widgets.ApprovalBadge(m.IsApproved))
	b.WriteString("\n\n")

	if m.Description != "" {
		b.WriteString(m.Description + "\n\n")
	}

	lines := [][2]string{
		{"Category", m.Category},
		{"Map", dash(m.MapName)},
		{"Type", m.FileType},
		{"Tags", dash(m.Tags)},
		{"Likes", strconv.Itoa(m.Likes)},
		{"Views", strconv.Itoa(m.Views)},
		{"Uploader", dash(m.Uploader.Username)},
	}
	if !m.CreatedAt.IsZero() {
		lines = append(lines, [2]string{"Created", m.CreatedAt.Format("2006-01-02 15:04")})
	}
	if d.fileURL != nil {
		lines = append(lines, [2]string{"File", d.fileURL(m.FilePath)})
	}
	for _, l := range lines {
		b.WriteString(styles.KeyValue(l[0], l[1]) + "\n")
	}

	if d.status != "" {
		b.WriteString("\n" + d.status)
	}
	return b.String()
}

func (d *Detail) Shortcuts() []string {
	return []string{"l Like", "r Reload", "b Back"}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
