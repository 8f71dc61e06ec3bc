// ABOUTME: Home menu listing the places the current session can go
// ABOUTME: Admin and upload entries appear only when the session allows them

package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
)

// Action is what choosing an option does
type Action int

const (
	ActionNavigate Action = iota
	ActionLogout
	ActionQuit
)

type option struct {
	icon   icons.Icon
	label  string
	action Action
	path   string
}

// Menu is the home screen
type Menu struct {
	options  []option
	cursor   int
	greeting string
}

// New builds the options for session
func New(session router.SessionView) *Menu {
	m := &Menu{}
	m.options = append(m.options, option{icons.Browse, "Browse materials", ActionNavigate, router.MaterialsPath})

	authed := session != nil && session.IsAuthenticated()
	if !authed {
		m.greeting = "Browsing as guest"
		m.options = append(m.options,
			option{icons.Login, "Log in", ActionNavigate, router.LoginPath},
		)
	} else {
		user := session.User()
		if user != nil {
			m.greeting = fmt.Sprintf("Logged in as %s", user.Username)
		}
		m.options = append(m.options, option{icons.Upload, "Upload a material", ActionNavigate, router.UploadPath})
		if user != nil && user.IsAdmin {
			m.options = append(m.options, option{icons.Admin, "Admin panel", ActionNavigate, router.AdminPath})
		}
		m.options = append(m.options, option{icons.Logout, "Log out", ActionLogout, ""})
	}

	m.options = append(m.options, option{icons.Quit, "Quit", ActionQuit, ""})
	return m
}

func (m *Menu) Init() tea.Cmd {
	return nil
}

func (m *Menu) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		return m, m.choose(m.options[m.cursor])
	case "q", "esc":
		return m, screen.Quit
	}
	return m, nil
}

func (m *Menu) choose(o option) tea.Cmd {
	switch o.action {
	case ActionLogout:
		return screen.Logout
	case ActionQuit:
		return screen.Quit
	default:
		return screen.Navigate(o.path)
	}
}

// Labels returns the option labels in order
func (m *Menu) Labels() []string {
	out := make([]string, len(m.options))
	for i, o := range m.options {
		out[i] = o.label
	}
	return out
}

func (m *Menu) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("What would you like to do?"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.greeting))
	b.WriteString("\n")

	for i, o := range m.options {
		cursor := "  "
		style := styles.Normal
		if i == m.cursor {
			cursor = "> "
			style = styles.Selected
		}
		b.WriteString(cursor + style.Render(o.icon.String()+" "+o.label) + "\n")
	}
	return b.String()
}

func (m *Menu) Shortcuts() []string {
	return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
}
