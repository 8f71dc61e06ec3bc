// ABOUTME: Login screen: a huh form that stores the session on success
// ABOUTME: Afterwards it continues to the location carried in the redirect query

package login

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
	"github.com/materialhub/materialhub-cli/internal/tui/theme"
)

// Authenticator exchanges credentials for a session
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
}

// SessionWriter persists the result of a login
type SessionWriter interface {
	SetAuth(ctx context.Context, auth *models.AuthResponse) error
}

type loginDoneMsg struct {
	user models.User
	err  error
}

// Login is the /login screen
type Login struct {
	ctx      context.Context
	auth     Authenticator
	session  SessionWriter
	redirect string

	form       *huh.Form
	username   string
	password   string
	submitting bool
	err        error
}

// New builds the screen. redirect is where to go after a successful
// login; anything but an absolute client path falls back to /.
func New(ctx context.Context, auth Authenticator, session SessionWriter, redirect string) *Login {
	l := &Login{ctx: ctx, auth: auth, session: session, redirect: Target(redirect)}
	l.form = l.newForm()
	return l
}

// Target sanitizes a redirect query value
func Target(redirect string) string {
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") || strings.HasPrefix(redirect, router.LoginPath) {
		return router.RootPath
	}
	return redirect
}

var errEmpty = errors.New("required")

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmpty
	}
	return nil
}

func (l *Login) newForm() *huh.Form {
	l.password = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&l.username).
				Validate(required),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required),
		).Title("Log in").
			Description("Use your materialhub account"),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// submit logs in and stores the session
func (l *Login) submit() tea.Cmd {
	l.submitting = true
	req := models.LoginRequest{Username: strings.TrimSpace(l.username), Password: l.password}
	return func() tea.Msg {
		auth, err := l.auth.Login(l.ctx, req)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if err := l.session.SetAuth(l.ctx, auth); err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{user: auth.User}
	}
}

// Capturing is true while the form takes keystrokes
func (l *Login) Capturing() bool { return !l.submitting }

func (l *Login) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.submitting = false
		if msg.err != nil {
			l.err = msg.err
			l.form = l.newForm()
			return l, l.form.Init()
		}
		return l, screen.Navigate(l.redirect)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return l, screen.Navigate(router.HomePath)
		}
		if l.submitting {
			return l, nil
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}
	if l.form.State == huh.StateCompleted && !l.submitting {
		return l, l.submit()
	}
	return l, cmd
}

func (l *Login) View() string {
	var b strings.Builder
	b.WriteString(l.form.View())
	if l.redirect != router.RootPath {
		b.WriteString("\n" + styles.Subtitle.Render("You will continue to "+l.redirect))
	}
	if l.submitting {
		b.WriteString("\nLogging in...")
	}
	if l.err != nil {
		b.WriteString("\n" + styles.StatusCritical.Render("Login failed: "+failure(l.err)))
	}
	return b.String()
}

func (l *Login) Shortcuts() []string {
	return []string{"Tab Next field", "Enter Submit", "Esc Cancel"}
}

// failure explains a failed login. A 401 here means bad credentials, not
// an expired session.
func failure(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return "incorrect username or password"
	}
	return err.Error()
}
