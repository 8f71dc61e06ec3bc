// ABOUTME: Hidden command serving the in-memory fake backend with demo data
// ABOUTME: Lets the CLI and TUI run end to end without the real service

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/fakeapi"
	"github.com/materialhub/materialhub-cli/internal/logger"
)

var devBackendAddr string

var devBackendCmd = &cobra.Command{
	Use:    "dev-backend",
	Short:  "Serve a fake backend with demo data",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runDevBackend(ctx, w, devBackendAddr)
		})
	},
}

func init() {
	devBackendCmd.Flags().StringVar(&devBackendAddr, "addr", "127.0.0.1:8000", "Listen address")
	rootCmd.AddCommand(devBackendCmd)
}

// runDevBackend serves until ctx is canceled
func runDevBackend(ctx context.Context, w io.Writer, addr string) int {
	log := logger.New(os.Stderr, "info", "text")

	api := fakeapi.New()
	api.Seed()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.LoggedHandler(log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(w, "Fake backend on http://%s (login %s/%s or %s/%s)\n",
		addr, fakeapi.DemoAdmin, fakeapi.DemoAdminPassword, fakeapi.DemoUser, fakeapi.DemoUserPassword)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
