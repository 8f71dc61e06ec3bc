// ABOUTME: Admin user table with per-user material counts
// ABOUTME: Toggles the active flag or the admin role of the selected user

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
	"github.com/materialhub/materialhub-cli/internal/tui/widgets"
)

// UserAdmin is the part of the admin API the users screen uses
type UserAdmin interface {
	Users(ctx context.Context, p client.PageParams) ([]models.AdminUser, error)
	ToggleUserActive(ctx context.Context, id int) (*models.MessageResult, error)
	ToggleUserAdmin(ctx context.Context, id int) (*models.MessageResult, error)
}

type usersLoadedMsg struct {
	seq   int
	users []models.AdminUser
	err   error
}

// Users is the /admin/users screen
type Users struct {
	ctx  context.Context
	src  UserAdmin
	self int // id of the logged in admin; the server refuses changes to it

	params  client.PageParams
	users   []models.AdminUser
	loaded  bool
	table   table.Model
	spinner spinner.Model
	seq     int
	busy    bool

	status string
	err    error
}

// NewUsers creates the screen. self is the current user's id.
func NewUsers(ctx context.Context, src UserAdmin, self int) *Users {
	t := table.New(
		table.WithColumns(userColumns(80)),
		table.WithFocused(true),
		table.WithHeight(PageSize),
	)
	t.SetStyles(styles.Table())
	return &Users{
		ctx:     ctx,
		src:     src,
		self:    self,
		params:  client.PageParams{Page: 1, Size: PageSize},
		table:   t,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func userColumns(width int) []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Username", Width: 16},
		{Title: "Email", Width: max(20, width-62)},
		{Title: "Status", Width: 8},
		{Title: "Role", Width: 6},
		{Title: "Uploads", Width: 7},
		{Title: "Joined", Width: 10},
	}
}

func (u *Users) Init() tea.Cmd {
	return tea.Batch(u.load(), u.spinner.Tick)
}

func (u *Users) load() tea.Cmd {
	u.seq++
	seq, params := u.seq, u.params
	return func() tea.Msg {
		users, err := u.src.Users(u.ctx, params)
		return usersLoadedMsg{seq: seq, users: users, err: err}
	}
}

// selected returns the highlighted user
func (u *Users) selected() (models.AdminUser, bool) {
	row := u.table.SelectedRow()
	if row == nil {
		return models.AdminUser{}, false
	}
	id, _ := strconv.Atoi(row[0])
	for _, usr := range u.users {
		if usr.ID == id {
			return usr, true
		}
	}
	return models.AdminUser{}, false
}

func (u *Users) toggle(what string, call func(context.Context, int) (*models.MessageResult, error)) tea.Cmd {
	usr, ok := u.selected()
	if !ok || u.busy {
		return nil
	}
	if usr.ID == u.self {
		u.status = "You cannot change your own " + what
		return nil
	}
	u.busy = true
	u.status = fmt.Sprintf("Updating %s...", usr.Username)
	return func() tea.Msg {
		res, err := call(u.ctx, usr.ID)
		return actionDoneMsg{verb: "Updating", id: usr.ID, res: res, err: err}
	}
}

func (u *Users) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		u.table.SetColumns(userColumns(msg.Width))
		u.table.SetHeight(max(5, min(PageSize, msg.Height-6)))
		return u, nil

	case usersLoadedMsg:
		if msg.seq != u.seq {
			return u, nil
		}
		u.err = msg.err
		if msg.err == nil {
			if len(msg.users) == 0 && u.params.Page > 1 {
				u.params.Page--
				u.status = "No more users"
				return u, u.load()
			}
			u.loaded = true
			u.users = msg.users
			u.table.SetRows(u.rows())
			u.table.SetCursor(min(u.table.Cursor(), max(0, len(u.users)-1)))
		}
		return u, nil

	case actionDoneMsg:
		u.busy = false
		if msg.err != nil {
			u.status = ""
			u.err = msg.err
			return u, nil
		}
		u.err = nil
		u.status = fmt.Sprintf("User %d updated", msg.id)
		if msg.res != nil && msg.res.Message != "" {
			u.status = msg.res.Message
		}
		return u, u.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		u.spinner, cmd = u.spinner.Update(msg)
		return u, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "t":
			return u, u.toggle("status", u.src.ToggleUserActive)
		case "A":
			return u, u.toggle("admin role", u.src.ToggleUserAdmin)
		case "n", "right":
			// The listing has no total; a full page suggests there may be more
			if len(u.users) == u.params.Size {
				u.params.Page++
				return u, u.load()
			}
			return u, nil
		case "p", "left":
			if u.params.Page > 1 {
				u.params.Page--
				return u, u.load()
			}
			return u, nil
		case "r":
			return u, u.load()
		case "b", "esc":
			return u, screen.Navigate(router.AdminPath)
		}
		var cmd tea.Cmd
		u.table, cmd = u.table.Update(msg)
		return u, cmd
	}
	return u, nil
}

func (u *Users) rows() []table.Row {
	out := make([]table.Row, len(u.users))
	for i, usr := range u.users {
		status, role := "active", "user"
		if !usr.IsActive {
			status = "disabled"
		}
		if usr.IsAdmin {
			role = "admin"
		}
		name := usr.Username
		if usr.ID == u.self {
			name += " (you)"
		}
		joined := ""
		if !usr.CreatedAt.IsZero() {
			joined = usr.CreatedAt.Local().Format("2006-01-02")
		}
		out[i] = table.Row{
			strconv.Itoa(usr.ID),
			name,
			usr.Email,
			status,
			role,
			strconv.Itoa(usr.MaterialsCount),
			joined,
		}
	}
	return out
}

func (u *Users) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Users"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("Page %d", u.params.Page)))
	b.WriteString("\n")

	switch {
	case !u.loaded && u.err == nil:
		b.WriteString(u.spinner.View() + " Loading users...")
	case u.loaded && len(u.users) == 0:
		b.WriteString(styles.Subtitle.Render("No users."))
	case u.loaded:
		b.WriteString(u.table.View())
	}

	if usr, ok := u.selected(); ok && u.err == nil {
		b.WriteString(fmt.Sprintf("\n%s %s %s", usr.Username, widgets.ActiveBadge(usr.IsActive), widgets.RoleBadge(usr.IsAdmin)))
	}
	if u.status != "" {
		b.WriteString("\n" + styles.Subtitle.Render(u.status))
	}
	if u.err != nil {
		b.WriteString("\n" + styles.StatusCritical.Render("Error: "+screen.ErrorText(u.err)))
	}
	return b.String()
}

func (u *Users) Shortcuts() []string {
	return []string{"t Toggle active", "A Toggle admin", "n/p Page", "r Reload", "b Back"}
}
