// ABOUTME: Root command for the materialhub CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
	storeKind  string
)

// Exit codes shared by all commands
const (
	exitOK       = 0
	exitRejected = 1 // the backend or the route guard refused the request
	exitError    = 2 // connectivity, configuration or local failures
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "materialhub",
	Short: "Terminal client for the materialhub media library",
	Long: `materialhub browses, uploads and likes materials, and gives admins a
moderation panel, from the terminal.

Environment Variables:
  MATERIALHUB_MODE          development or production (default: production)
  MATERIALHUB_API_BASE_URL  Backend origin (default: mode fallback)
  MATERIALHUB_TIMEOUT       Request timeout in seconds (default: 10)
  MATERIALHUB_CONFIG_DIR    Where the session is stored (default: ~/.config/materialhub)
  MATERIALHUB_STORE         Session store: file, sqlite or memory (default: file)
  MATERIALHUB_LOG_LEVEL     debug, info, warn, error (default: warn)
  MATERIALHUB_LOG_FORMAT    text or json (default: text)

A .env file in the working directory is read first.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend origin (overrides MATERIALHUB_API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the session (overrides MATERIALHUB_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Session store: file, sqlite or memory (overrides MATERIALHUB_STORE)")
}

// loadConfig resolves configuration with flags applied on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(apiURL)
	if err != nil {
		return nil, err
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
