// ABOUTME: Admin dashboard screen with moderation and user metrics
// ABOUTME: Stats, the head of the queue and the user list load in one fan-out

package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/materialhub/materialhub-cli/internal/overview"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
	"github.com/materialhub/materialhub-cli/internal/tui/widgets"
)

type overviewLoadedMsg struct {
	data *overview.Overview
	err  error
}

// Dashboard is the /admin screen
type Dashboard struct {
	ctx context.Context
	src overview.Source

	data    *overview.Overview
	err     error
	spinner spinner.Model
	width   int
}

// NewDashboard creates the dashboard; data loads on Init
func NewDashboard(ctx context.Context, src overview.Source) *Dashboard {
	return &Dashboard{
		ctx:     ctx,
		src:     src,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.load(), d.spinner.Tick)
}

func (d *Dashboard) load() tea.Cmd {
	return func() tea.Msg {
		data, err := overview.Load(d.ctx, d.src)
		return overviewLoadedMsg{data: data, err: err}
	}
}

func (d *Dashboard) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
	case overviewLoadedMsg:
		d.err = msg.err
		if msg.err == nil {
			d.data = msg.data
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			return d, screen.Navigate(router.AdminMaterialsPath)
		case "u":
			return d, screen.Navigate(router.AdminUsersPath)
		case "r":
			return d, d.load()
		case "b", "esc":
			return d, screen.Navigate(router.HomePath)
		}
	}
	return d, nil
}

func (d *Dashboard) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Admin dashboard"))
	sb.WriteString("\n\n")

	if d.err != nil {
		sb.WriteString(styles.StatusCritical.Render("Error: " + screen.ErrorText(d.err)))
		return sb.String()
	}
	if d.data == nil {
		sb.WriteString(d.spinner.View() + " Loading admin overview...")
		return sb.String()
	}

	sb.WriteString(d.metrics())
	sb.WriteString("\n\n")
	sb.WriteString(styles.Subtitle.Render("Moderation queue"))
	sb.WriteString("\n")
	sb.WriteString(queuePreview(d.data))
	return sb.String()
}

// metrics lays the blocks out in one row, or two when the terminal is narrow
func (d *Dashboard) metrics() string {
	s := d.data.Stats
	cfg := widgets.DefaultMetricBlockConfig()

	pending := cfg
	if s.PendingMaterials > 0 {
		pending.ValueColor = styles.Warning
	}

	blocks := []string{
		widgets.CountBlock(icons.Pending, "Pending", s.PendingMaterials, "awaiting review", pending),
		widgets.MetricBlockWithBar(icons.CheckOK, "Approved", d.data.ApprovalRate(),
			fmt.Sprintf("%d of %d", s.ApprovedMaterials, s.TotalMaterials), cfg),
		widgets.CountBlock(icons.Users, "Users", s.TotalUsers, fmt.Sprintf("%d active", s.ActiveUsers), cfg),
		widgets.CountBlock(icons.Admin, "Admins", d.data.AdminCount(), "with admin role", cfg),
	}

	if d.width > 0 && d.width < 4*cfg.Width+3 {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, blocks[0], " ", blocks[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, blocks[2], " ", blocks[3]),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks[0], " ", blocks[1], " ", blocks[2], " ", blocks[3])
}

func queuePreview(o *overview.Overview) string {
	if len(o.Pending) == 0 {
		return styles.StatusOK.Render(icons.CheckOK.String() + " Nothing waiting for review")
	}
	lines := make([]string, 0, len(o.Pending)+1)
	for _, m := range o.Pending {
		lines = append(lines, fmt.Sprintf("  %s #%d %s  %s  by %s",
			icons.ForFileType(m.FileType), m.ID, m.Title, styles.Disabled.Render(m.Category), m.Uploader.Username))
	}
	if more := o.Stats.PendingMaterials - len(o.Pending); more > 0 {
		lines = append(lines, styles.Disabled.Render(fmt.Sprintf("  ...and %d more", more)))
	}
	return strings.Join(lines, "\n")
}

func (d *Dashboard) Shortcuts() []string {
	return []string{"m Moderation", "u Users", "r Refresh", "b Back"}
}
