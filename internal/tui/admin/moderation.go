// ABOUTME: Moderation queue screen listing materials awaiting approval
// ABOUTME: Approve, reject or delete the selected material, then reload the page

package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
)

// PageSize is the number of rows per admin table page
const PageSize = 20

// Moderator is the part of the admin API the moderation screen uses
type Moderator interface {
	PendingMaterials(ctx context.Context, p client.PageParams) (*models.MaterialPage, error)
	ApproveMaterial(ctx context.Context, id int) (*models.MessageResult, error)
	RejectMaterial(ctx context.Context, id int) (*models.MessageResult, error)
	DeleteMaterial(ctx context.Context, id int) (*models.MessageResult, error)
}

type queueLoadedMsg struct {
	seq  int
	page *models.MaterialPage
	err  error
}

// actionDoneMsg reports a finished mutation on row id
type actionDoneMsg struct {
	verb string
	id   int
	res  *models.MessageResult
	err  error
}

// Moderation is the /admin/materials screen
type Moderation struct {
	ctx context.Context
	src Moderator

	params  client.PageParams
	page    *models.MaterialPage
	table   table.Model
	spinner spinner.Model
	seq     int
	loading bool
	busy    bool
	confirm int // material id awaiting delete confirmation, 0 if none

	status string
	err    error
}

// NewModeration creates the screen at page 1
func NewModeration(ctx context.Context, src Moderator) *Moderation {
	t := table.New(
		table.WithColumns(moderationColumns(80)),
		table.WithFocused(true),
		table.WithHeight(PageSize),
	)
	t.SetStyles(styles.Table())
	return &Moderation{
		ctx:     ctx,
		src:     src,
		params:  client.PageParams{Page: 1, Size: PageSize},
		table:   t,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func moderationColumns(width int) []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: max(20, width-56)},
		{Title: "Category", Width: 10},
		{Title: "Type", Width: 6},
		{Title: "Uploader", Width: 12},
		{Title: "Uploaded", Width: 16},
	}
}

func (m *Moderation) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m *Moderation) load() tea.Cmd {
	m.seq++
	m.loading = true
	seq, params := m.seq, m.params
	return func() tea.Msg {
		page, err := m.src.PendingMaterials(m.ctx, params)
		return queueLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (m *Moderation) selectedID() (int, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	return id, err == nil
}

func (m *Moderation) act(verb string, call func(context.Context, int) (*models.MessageResult, error)) tea.Cmd {
	id, ok := m.selectedID()
	if !ok || m.busy {
		return nil
	}
	m.busy = true
	m.status = fmt.Sprintf("%s material %d...", verb, id)
	return func() tea.Msg {
		res, err := call(m.ctx, id)
		return actionDoneMsg{verb: verb, id: id, res: res, err: err}
	}
}

func (m *Moderation) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetColumns(moderationColumns(msg.Width))
		m.table.SetHeight(max(5, min(PageSize, msg.Height-6)))
		return m, nil

	case queueLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			// An action may empty the last page; step back to a page that exists
			if len(msg.page.Materials) == 0 && m.params.Page > 1 {
				m.params.Page--
				return m, m.load()
			}
			m.page = msg.page
			m.table.SetRows(moderationRows(msg.page.Materials))
			m.table.SetCursor(min(m.table.Cursor(), max(0, len(msg.page.Materials)-1)))
		}
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = ""
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = resultText(msg)
		return m, m.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Moderation) updateKeys(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if m.confirm != 0 {
		id := m.confirm
		m.confirm = 0
		if key != "y" {
			m.status = "Delete cancelled"
			return m, nil
		}
		m.busy = true
		m.status = fmt.Sprintf("Deleting material %d...", id)
		return m, func() tea.Msg {
			res, err := m.src.DeleteMaterial(m.ctx, id)
			return actionDoneMsg{verb: "Deleting", id: id, res: res, err: err}
		}
	}

	switch key {
	case "a":
		return m, m.act("Approving", m.src.ApproveMaterial)
	case "r":
		return m, m.act("Rejecting", m.src.RejectMaterial)
	case "d":
		if id, ok := m.selectedID(); ok && !m.busy {
			m.confirm = id
			m.status = fmt.Sprintf("Delete material %d and its file? y to confirm", id)
		}
		return m, nil
	case "n", "right":
		if m.page != nil && m.params.Page < m.page.Pages() {
			m.params.Page++
			return m, m.load()
		}
		return m, nil
	case "p", "left":
		if m.params.Page > 1 {
			m.params.Page--
			return m, m.load()
		}
		return m, nil
	case "R":
		return m, m.load()
	case "b", "esc":
		return m, screen.Navigate(router.AdminPath)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func resultText(msg actionDoneMsg) string {
	if msg.res != nil && msg.res.Message != "" {
		return msg.res.Message
	}
	past := map[string]string{"Approving": "approved", "Rejecting": "rejected", "Deleting": "deleted"}[msg.verb]
	return fmt.Sprintf("Material %d %s", msg.id, past)
}

func moderationRows(ms []models.Material) []table.Row {
	out := make([]table.Row, len(ms))
	for i, mat := range ms {
		uploaded := ""
		if !mat.CreatedAt.IsZero() {
			uploaded = mat.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		out[i] = table.Row{
			strconv.Itoa(mat.ID),
			mat.Title,
			mat.Category,
			mat.FileType,
			mat.Uploader.Username,
			uploaded,
		}
	}
	return out
}

func (m *Moderation) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Moderation queue"))
	b.WriteString("\n")
	if m.page != nil {
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("Page %d of %d (%d pending)", m.params.Page, max(1, m.page.Pages()), m.page.Total)))
	}
	b.WriteString("\n")

	switch {
	case m.page == nil && m.err == nil:
		b.WriteString(m.spinner.View() + " Loading pending materials...")
	case m.page != nil && len(m.page.Materials) == 0:
		b.WriteString(styles.StatusOK.Render("Nothing waiting for review."))
	case m.page != nil:
		b.WriteString(m.table.View())
	}

	if m.status != "" {
		b.WriteString("\n" + styles.Subtitle.Render(m.status))
	}
	if m.err != nil {
		b.WriteString("\n" + styles.StatusCritical.Render("Error: "+screen.ErrorText(m.err)))
	}
	return b.String()
}

func (m *Moderation) Shortcuts() []string {
	if m.confirm != 0 {
		return []string{"y Delete", "any key Cancel"}
	}
	return []string{"a Approve", "r Reject", "d Delete", "n/p Page", "R Reload", "b Back"}
}
