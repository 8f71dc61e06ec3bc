// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Builds one screen per route and sends every move through the navigator

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/recent"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/session"
	"github.com/materialhub/materialhub-cli/internal/tui/admin"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/login"
	"github.com/materialhub/materialhub-cli/internal/tui/materials"
	"github.com/materialhub/materialhub-cli/internal/tui/menu"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
	"github.com/materialhub/materialhub-cli/internal/tui/upload"
)

// Layout constants
const (
	minTerminalWidth = 80 // frame never gets narrower than this
	frameLines       = 2  // header and footer
)

// Deps are the long-lived services the screens work against
type Deps struct {
	Client    *client.Client
	Session   *session.Session
	Navigator *router.Navigator
	Catalogs  *catalog.Loader
	Recent    *recent.Uploads
	Logger    *slog.Logger
}

// navigatedMsg carries a navigation that did not start in Update, i.e. a
// forced move to /login after the backend rejected the session
type navigatedMsg struct {
	nav router.Navigation
}

// healthMsg is the result of the startup backend probe
type healthMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	ctx  context.Context
	deps Deps

	current router.Match
	screen  screen.Screen

	width  int
	height int
	banner string // backend problem, shown until a probe succeeds
	notice string // why the last navigation was redirected
}

// New creates the root model showing the navigator's current location, or
// / if nothing was navigated yet
func New(ctx context.Context, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	a := &App{ctx: ctx, deps: deps}

	cur, ok := deps.Navigator.Current()
	if !ok {
		nav, err := deps.Navigator.Navigate(router.RootPath)
		if err != nil {
			deps.Logger.Error("initial navigation failed", "error", err)
		}
		cur = router.Match{Route: nav.Route, Params: nav.Params, Location: nav.To}
	}
	a.current = cur
	a.screen = a.build(cur)
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.checkHealth(), a.screen.Init())
}

func (a *App) checkHealth() tea.Cmd {
	return func() tea.Msg {
		_, err := a.deps.Client.Health(a.ctx)
		return healthMsg{err: err}
	}
}

// build creates the screen for a route
func (a *App) build(m router.Match) screen.Screen {
	c := a.deps.Client
	switch m.Route.Name {
	case router.RouteMaterials:
		return materials.NewList(a.ctx, c.Materials(), a.deps.Catalogs)
	case router.RouteMaterialDetail:
		id, err := materials.ParseID(m.Params)
		if err != nil {
			a.deps.Logger.Warn("bad material id", "params", m.Params, "error", err)
			break
		}
		return materials.NewDetail(a.ctx, c.Materials(), c.FileURL, id)
	case router.RouteUpload:
		return upload.New(a.ctx, c.Materials(), a.deps.Catalogs, a.deps.Recent)
	case router.RouteLogin:
		return login.New(a.ctx, c.Auth(), a.deps.Session, m.Location.Get(router.RedirectParam))
	case router.RouteAdmin:
		return admin.NewDashboard(a.ctx, c.Admin())
	case router.RouteAdminMaterials:
		return admin.NewModeration(a.ctx, c.Admin())
	case router.RouteAdminUsers:
		self := 0
		if u := a.deps.Session.User(); u != nil {
			self = u.ID
		}
		return admin.NewUsers(a.ctx, c.Admin(), self)
	}
	return menu.New(a.deps.Session)
}

// show replaces the current screen with the one for nav
func (a *App) show(nav router.Navigation) tea.Cmd {
	a.current = router.Match{Route: nav.Route, Params: nav.Params, Location: nav.To}
	a.notice = ""
	if nav.Denied {
		a.notice = denialText(nav)
	}
	if nav.Forced {
		a.notice = "Your session has ended. Please log in again."
	}

	a.screen = a.build(a.current)
	if a.width > 0 {
		a.screen, _ = a.screen.Update(a.contentSize())
	}
	return a.screen.Init()
}

func denialText(nav router.Navigation) string {
	switch nav.Reason {
	case router.ReasonLoginRequired:
		return "Please log in to open " + nav.Requested.Path
	case router.ReasonAdminRequired:
		return "Admin privileges are required for " + nav.Requested.Path
	case router.ReasonAlreadyLogged:
		return "You are already logged in"
	}
	return "Redirected: " + nav.Reason
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(a.contentSize())
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if !a.capturing() {
				return a, tea.Quit
			}
		}

	case screen.NavigateMsg:
		nav, err := a.deps.Navigator.Navigate(msg.Path)
		if err != nil {
			a.notice = err.Error()
			return a, nil
		}
		return a, a.show(nav)

	case navigatedMsg:
		return a, a.sync(msg.nav)

	case screen.LogoutMsg:
		if err := a.deps.Session.ClearAuth(a.ctx); err != nil {
			a.deps.Logger.Warn("failed to clear session", "error", err)
		}
		nav, err := a.deps.Navigator.Navigate(router.HomePath)
		if err != nil {
			a.notice = err.Error()
			return a, nil
		}
		cmd := a.show(nav)
		a.notice = "Logged out"
		return a, cmd

	case screen.QuitMsg:
		return a, tea.Quit

	case healthMsg:
		a.banner = ""
		if msg.err != nil {
			a.banner = fmt.Sprintf("Backend unreachable at %s: %s", a.deps.Client.BaseURL(), screen.ErrorText(msg.err))
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

// sync follows a navigation made outside Update. Stale messages, and a
// forced login while the login screen is already up (its own failed attempt
// triggered it), leave the screen alone.
func (a *App) sync(nav router.Navigation) tea.Cmd {
	cur, ok := a.deps.Navigator.Current()
	if !ok || cur.Location.String() != nav.To.String() {
		return nil
	}
	if nav.Forced && a.current.Route.Name == router.RouteLogin {
		return nil
	}
	if !nav.Forced && a.current.Location.String() == nav.To.String() {
		return nil
	}
	return a.show(nav)
}

func (a *App) capturing() bool {
	c, ok := a.screen.(screen.Capturer)
	return ok && c.Capturing()
}

// frameWidth is one column less than the terminal to avoid wrapping
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

func (a *App) contentSize() tea.WindowSizeMsg {
	h := a.height - frameLines
	if a.banner != "" {
		h--
	}
	if a.notice != "" {
		h--
	}
	return tea.WindowSizeMsg{Width: a.frameWidth(), Height: max(h, 5)}
}

// View implements tea.Model
func (a *App) View() string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	if a.banner != "" {
		sb.WriteString(styles.StatusWarning.Render(icons.Warning.String() + " " + a.banner))
		sb.WriteString("\n")
	}
	if a.notice != "" {
		sb.WriteString(styles.Subtitle.Render(a.notice))
		sb.WriteString("\n")
	}
	sb.WriteString(a.screen.View())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("MaterialHub"))

	var parts []string
	if title := a.current.Route.Title; title != "" {
		parts = append(parts, title)
	}
	if u := a.deps.Session.User(); u != nil && a.deps.Session.IsAuthenticated() {
		name := u.Username
		if u.IsAdmin {
			name += " (admin)"
		}
		parts = append(parts, icons.User.String()+" "+name)
	} else {
		parts = append(parts, "guest")
	}
	rightText := " " + contextStyle.Render(strings.Join(parts, " · ")) + " "

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	header := borderStyle.Render("╭─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╮")
	return truncateFrame(header, width, "─╮", borderStyle)
}

// renderFooter creates the footer with the current screen's shortcuts
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := append([]string(nil), a.screen.Shortcuts()...)
	if a.capturing() {
		shortcuts = append(shortcuts, "ctrl+c Quit")
	} else if !hasKey(shortcuts, "q") {
		shortcuts = append(shortcuts, "q Quit")
	}

	var styled []string
	for _, s := range shortcuts {
		if k, label, ok := strings.Cut(s, " "); ok {
			styled = append(styled, keyStyle.Render(k)+" "+labelStyle.Render(label))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if host := hostOf(a.deps.Client.BaseURL()); host != "" {
		rightText = " " + statusStyle.Render(host) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		rightText = ""
		fillWidth = max(0, width-4-lipgloss.Width(leftText))
	}
	footer := borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╯")
	return truncateFrame(footer, width, "─╯", borderStyle)
}

// truncateFrame cuts an overlong frame line and closes it with corner
func truncateFrame(line string, width int, corner string, border lipgloss.Style) string {
	if lipgloss.Width(line) <= width {
		return line
	}
	cut := lipgloss.NewStyle().MaxWidth(width - lipgloss.Width(corner)).Render(line)
	return cut + border.Render(corner)
}

func hasKey(shortcuts []string, key string) bool {
	for _, s := range shortcuts {
		if k, _, _ := strings.Cut(s, " "); k == key {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// Run starts the TUI at start and blocks until the user quits
func Run(ctx context.Context, deps Deps, start string) error {
	if _, err := deps.Navigator.Navigate(start); err != nil {
		return fmt.Errorf("cannot open %s: %w", start, err)
	}

	app := New(ctx, deps)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the program reads the message, and the navigator
	// calls subscribers synchronously from inside Update
	unsubscribe := deps.Navigator.Subscribe(func(nav router.Navigation) {
		if nav.Forced {
			go p.Send(navigatedMsg{nav: nav})
		}
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
