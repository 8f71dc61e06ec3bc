// ABOUTME: Contract between the TUI root model and the per-route screens
// ABOUTME: Screens ask for navigation with messages; only the root talks to the navigator

package screen

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/client"
)

// Screen is the model shown for one route
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	// Shortcuts are "key label" pairs for the footer
	Shortcuts() []string
}

// Capturer is implemented by screens that are currently typing into a
// field, so global single-letter keys must not fire
type Capturer interface {
	Capturing() bool
}

// NavigateMsg asks the root model to navigate to Path through the guard
type NavigateMsg struct {
	Path string
}

// LogoutMsg asks the root model to clear the session
type LogoutMsg struct{}

// QuitMsg asks the root model to exit
type QuitMsg struct{}

// Navigate returns a command producing a NavigateMsg
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Logout is a command producing a LogoutMsg
func Logout() tea.Msg { return LogoutMsg{} }

// Quit is a command producing a QuitMsg
func Quit() tea.Msg { return QuitMsg{} }

// ErrorText renders an API error for a status line. A 401 is reported as
// an expired session since the root model is already forcing the login screen.
func ErrorText(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return "Session expired, please log in again"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
