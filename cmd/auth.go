// ABOUTME: Session commands: login, register, logout and whoami
// ABOUTME: Login stores the token and user; every later command reuses them

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/router"
)

var (
	loginUsername string
	loginPassword string

	registerUsername string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Log in with username and password. Missing values are prompted for;
the password is read without echo.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runLogin(ctx, w, loginUsername, loginPassword)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runRegister(ctx, w, registerUsername, registerEmail, registerPassword)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user as the backend sees it",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runWhoami)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password (prompted twice when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(ctx context.Context, w io.Writer, username, password string) int {
	return withApp(ctx, w, func(app *App) int {
		nav, err := app.Navigator.Navigate(router.LoginPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		if nav.Denied {
			fmt.Fprintf(w, "Already logged in as %s. Run 'materialhub logout' first.\n", app.Session.User().Username)
			return exitRejected
		}

		p := newPrompter(w)
		if username == "" {
			if username, err = p.Text("Username"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}
		if password == "" {
			if password, err = p.Password("Password"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}

		auth, err := app.Client.Auth().Login(ctx, models.LoginRequest{Username: username, Password: password})
		if errors.Is(err, client.ErrUnauthorized) {
			// Bad credentials, not an expired session
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitRejected
		}
		if err != nil {
			return exitCodeFor(w, err)
		}
		if err := app.Session.SetAuth(ctx, auth); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}

		if IsJSONOutput() {
			printJSON(w, auth.User)
		} else {
			fmt.Fprintf(w, "Logged in as %s\n", auth.User.Username)
		}
		return exitOK
	})
}

func runRegister(ctx context.Context, w io.Writer, username, email, password string) int {
	return withApp(ctx, w, func(app *App) int {
		p := newPrompter(w)
		var err error
		if username == "" {
			if username, err = p.Text("Username"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}
		if email == "" {
			if email, err = p.Text("Email"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}
		confirm := password
		if password == "" {
			if password, err = p.Password("Password"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
			if confirm, err = p.Password("Confirm password"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}
		if password != confirm {
			fmt.Fprintln(w, "Error: passwords do not match")
			return exitRejected
		}

		user, err := app.Client.Auth().Register(ctx, models.RegisterRequest{
			Username:        username,
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, user)
		} else {
			fmt.Fprintf(w, "Registered %s. Run 'materialhub login' to sign in.\n", user.Username)
		}
		return exitOK
	})
}

func runLogout(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(app *App) int {
		wasLoggedIn := app.Session.IsAuthenticated()
		if err := app.Session.ClearAuth(ctx); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		if wasLoggedIn {
			fmt.Fprintln(w, "Logged out")
		} else {
			fmt.Fprintln(w, "Not logged in")
		}
		return exitOK
	})
}

func runWhoami(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(app *App) int {
		if !app.Session.IsAuthenticated() {
			fmt.Fprintln(w, "Not logged in")
			return exitRejected
		}

		user, err := app.Client.Auth().Me(ctx)
		if err != nil {
			return exitCodeFor(w, err)
		}
		if err := app.Session.SetUser(ctx, *user); err != nil {
			app.Logger.Warn("failed to refresh stored user", "error", err)
		}

		exp, hasExp := app.Session.TokenExpiry()
		if IsJSONOutput() {
			out := map[string]any{"user": user}
			if hasExp {
				out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
			}
			printJSON(w, out)
			return exitOK
		}

		fmt.Fprintln(w, formatUserHuman(user))
		if hasExp {
			fmt.Fprintf(w, "Token:  expires %s (in %s)\n", exp.Local().Format("2006-01-02 15:04"), time.Until(exp).Round(time.Minute))
		}
		return exitOK
	})
}
