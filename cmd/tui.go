// ABOUTME: Tui command launching the interactive terminal interface
// ABOUTME: Logs go to debug.log in the config directory since the TUI owns the terminal

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/logger"
	"github.com/materialhub/materialhub-cli/internal/recent"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui [path]",
	Aliases: []string{"ui"},
	Short:   "Open the interactive terminal interface",
	Long: `Open the interactive interface at path (default /). Paths are the same
as in 'materialhub routes', e.g. /materials/12 or /admin. Paths that need a
login open the login form first and continue afterwards.

Debug output is written to debug.log in the config directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		start := router.RootPath
		if len(args) == 1 {
			start = args[0]
		}
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runTUI(ctx, w, start)
		})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context, w io.Writer, start string) int {
	if !isTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(w, "Error: the interactive interface needs a terminal")
		return exitError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	log, closer, err := logger.OpenFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer closer.Close()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer app.Close()

	loader := catalog.NewLoader(app.Client.Materials(), catalog.DefaultTTL)
	defer loader.Close()

	log.Info("starting tui", "api", cfg.APIBaseURL, "start", start, "logged_in", app.Session.IsAuthenticated())
	err = tui.Run(ctx, tui.Deps{
		Client:    app.Client,
		Session:   app.Session,
		Navigator: app.Navigator,
		Catalogs:  loader,
		Recent:    recent.New(cfg.ConfigDir),
		Logger:    log,
	}, start)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
