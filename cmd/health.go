// ABOUTME: Health command for the materialhub CLI
// ABOUTME: Checks backend connectivity via /api/healthz

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the materialhub backend through /api/healthz.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	c := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger.New(io.Discard, cfg.LogLevel, cfg.LogFormat)))

	resp, err := c.Health(ctx)
	if err != nil {
		if IsJSONOutput() {
			printJSON(w, map[string]any{"backend": cfg.APIBaseURL, "healthy": false, "error": err.Error()})
		} else {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		return exitError
	}

	if IsJSONOutput() {
		printJSON(w, formatHealthJSON(cfg.APIBaseURL, cfg.Mode, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(cfg.APIBaseURL, cfg.Mode, resp))
	}
	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url, mode string, resp *client.HealthStatus) string {
	return fmt.Sprintf(`Backend: %s
Mode:    %s
Status:  %s`, url, mode, resp.Status)
}

// formatHealthJSON formats health response as a JSON-ready map
func formatHealthJSON(url, mode string, resp *client.HealthStatus) map[string]any {
	return map[string]any{
		"backend": url,
		"mode":    mode,
		"healthy": true,
		"status":  resp.Status,
	}
}
