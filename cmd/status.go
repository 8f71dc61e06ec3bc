// ABOUTME: Status command for the materialhub CLI
// ABOUTME: Shows backend reachability, the stored session and where the TUI would start

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and session status",
	Long: `Display the backend URL and reachability, the stored session and the
route the TUI would open on.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runStatus)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is everything status prints
type statusReport struct {
	Backend      string     `json:"backend"`
	Mode         string     `json:"mode"`
	Reachable    bool       `json:"reachable"`
	BackendError string     `json:"backend_error,omitempty"`
	Store        string     `json:"store"`
	LoggedIn     bool       `json:"logged_in"`
	Username     string     `json:"username,omitempty"`
	Admin        bool       `json:"admin"`
	TokenExpires *time.Time `json:"token_expires_at,omitempty"`
	StartRoute   string     `json:"start_route"`
}

// runStatus gathers the report; an unreachable backend exits 2
func runStatus(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(app *App) int {
		r := statusReport{
			Backend:  app.Config.APIBaseURL,
			Mode:     app.Config.Mode,
			Store:    app.Config.Store,
			LoggedIn: app.Session.IsAuthenticated(),
			Admin:    app.Session.IsAdmin(),
		}
		if u := app.Session.User(); u != nil {
			r.Username = u.Username
		}
		if exp, ok := app.Session.TokenExpiry(); ok {
			r.TokenExpires = &exp
		}
		if nav, err := app.Navigator.Navigate(router.RootPath); err == nil {
			r.StartRoute = nav.To.String()
		}

		if _, err := app.Client.Health(ctx); err != nil {
			r.BackendError = err.Error()
		} else {
			r.Reachable = true
		}

		if IsJSONOutput() {
			printJSON(w, r)
		} else {
			fmt.Fprintln(w, formatStatusHuman(r, time.Now()))
		}
		if !r.Reachable {
			return exitError
		}
		return exitOK
	})
}

func formatStatusHuman(r statusReport, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Backend:  %s (%s)\n", r.Backend, r.Mode)
	if r.Reachable {
		b.WriteString("Health:   ok\n")
	} else {
		fmt.Fprintf(&b, "Health:   unreachable (%s)\n", r.BackendError)
	}
	fmt.Fprintf(&b, "Store:    %s\n", r.Store)

	if !r.LoggedIn {
		b.WriteString("Session:  not logged in\n")
	} else {
		role := "member"
		if r.Admin {
			role = "admin"
		}
		fmt.Fprintf(&b, "Session:  %s (%s)\n", r.Username, role)
		if r.TokenExpires != nil {
			fmt.Fprintf(&b, "Token:    %s\n", tokenState(*r.TokenExpires, now))
		}
	}
	fmt.Fprintf(&b, "Start:    %s", r.StartRoute)
	return b.String()
}

// tokenState describes expiry relative to now
func tokenState(exp, now time.Time) string {
	if !exp.After(now) {
		return "expired; the next request will log you out"
	}
	return fmt.Sprintf("valid for %s", exp.Sub(now).Round(time.Minute))
}
