// ABOUTME: Composition root wiring config, storage, session, client and navigator
// ABOUTME: Owns the 401 subscription that clears the session and forces the login route

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/config"
	"github.com/materialhub/materialhub-cli/internal/logger"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/session"
	"github.com/materialhub/materialhub-cli/internal/storage"
)

// App is the wired object graph shared by CLI commands and the TUI
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     storage.Store
	Session   *session.Session
	Client    *client.Client
	Navigator *router.Navigator

	unsubscribe func()
}

// NewApp builds the graph. The persisted session is restored before the
// client is created, and every 401 clears it and forces /login.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg.Store, cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	sess := session.New(store, log)
	sess.InitAuth(ctx)

	c := client.New(cfg.APIBaseURL,
		client.WithTokenSource(session.StoredToken(store)),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
	)
	nav := router.NewNavigator(router.DefaultTable(), sess, log)

	app := &App{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Session:   sess,
		Client:    c,
		Navigator: nav,
	}
	app.unsubscribe = c.OnUnauthorized(app.handleUnauthorized)
	return app, nil
}

// handleUnauthorized is the one place a 401 turns into a logout
func (a *App) handleUnauthorized(ctx context.Context, apiErr *client.APIError) {
	a.Logger.Info("session rejected by backend, logging out", "path", apiErr.Path, "request_id", apiErr.RequestID)
	if err := a.Session.ClearAuth(context.WithoutCancel(ctx)); err != nil {
		a.Logger.Warn("failed to clear session", "error", err)
	}
	a.Navigator.ForceLogin()
}

// Close releases the store and the 401 subscription
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.Store.Close()
}

// Enter navigates to path through the guard. When the guard redirects, it
// prints why to w and returns false.
func (a *App) Enter(w io.Writer, path string) (router.Navigation, bool) {
	nav, err := a.Navigator.Navigate(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nav, false
	}
	if nav.Denied {
		fmt.Fprintf(w, "Access denied: %s (redirected to %s)\n", nav.Reason, nav.To)
		if nav.Reason == router.ReasonLoginRequired {
			fmt.Fprintln(w, "Run 'materialhub login' first.")
		}
		return nav, false
	}
	return nav, true
}

// withApp loads configuration, builds the App with a stderr logger, runs fn
// and tears down
func withApp(ctx context.Context, w io.Writer, fn func(*App) int) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	log := logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer app.Close()

	return fn(app)
}

// exitCodeFor maps an API call error to an exit code, printing it to w
func exitCodeFor(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		if apiErr.StatusCode == 401 {
			fmt.Fprintln(w, "Session expired or invalid; you have been logged out. Run 'materialhub login'.")
		}
		return exitRejected
	}
	return exitError
}

// signalContext is the context every command runs under
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runCommand adapts a runX function to cobra, exiting with its code
func runCommand(fn func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signalContext()
	code := fn(ctx, os.Stdout)
	cancel()
	if code != exitOK {
		os.Exit(code)
	}
}
