// ABOUTME: Configuration loader for the materialhub client
// ABOUTME: Resolves the API base URL from environment with dev/prod fallbacks

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Modes select which fallback API base URL applies
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Store backends for the persisted session
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Fallback API base URLs used when MATERIALHUB_API_BASE_URL is unset
const (
	DevelopmentAPIBaseURL = "http://localhost:8000"
	ProductionAPIBaseURL  = "https://materialhub.onrender.com"
)

// Environment variable names
const (
	EnvMode       = "MATERIALHUB_MODE"
	EnvAPIBaseURL = "MATERIALHUB_API_BASE_URL"
	EnvTimeout    = "MATERIALHUB_TIMEOUT"
	EnvConfigDir  = "MATERIALHUB_CONFIG_DIR"
	EnvStore      = "MATERIALHUB_STORE"
	EnvLogLevel   = "MATERIALHUB_LOG_LEVEL"
	EnvLogFormat  = "MATERIALHUB_LOG_FORMAT"
)

type Config struct {
	Mode string // development or production (default: production)

	// API
	APIBaseURL     string        // backend origin, without the /api prefix
	UploadURL      string        // APIBaseURL + /uploads
	RequestTimeout time.Duration // fixed per-request deadline (default 10s)

	// Local state
	ConfigDir string // directory holding the session store and debug log
	Store     string // file, sqlite, or memory (default: file)

	// Logging
	LogLevel  string // debug, info, warn, error (default: warn)
	LogFormat string // text, json (default: text)
}

// IsDevelopment reports whether development fallbacks are in effect
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// Load reads an optional .env file, then the environment. apiURLOverride,
// when non-empty, takes precedence over both (it carries the --api-url flag).
func Load(apiURLOverride string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	mode := strings.ToLower(getEnv(EnvMode, ModeProduction))
	if mode == "dev" {
		mode = ModeDevelopment
	}
	if mode == "prod" {
		mode = ModeProduction
	}
	if mode != ModeDevelopment && mode != ModeProduction {
		return nil, fmt.Errorf("%s must be %q or %q, got %q", EnvMode, ModeDevelopment, ModeProduction, mode)
	}

	baseURL, err := ResolveAPIBaseURL(mode, apiURLOverride)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Mode:           mode,
		APIBaseURL:     baseURL,
		UploadURL:      baseURL + "/uploads",
		RequestTimeout: time.Duration(getEnvInt(EnvTimeout, 10)) * time.Second,
		ConfigDir:      getEnv(EnvConfigDir, DefaultConfigDir()),
		Store:          strings.ToLower(getEnv(EnvStore, StoreFile)),
		LogLevel:       getEnv(EnvLogLevel, "warn"),
		LogFormat:      getEnv(EnvLogFormat, "text"),
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", EnvTimeout, os.Getenv(EnvTimeout))
	}
	switch cfg.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("%s must be one of file, sqlite, memory, got %q", EnvStore, cfg.Store)
	}

	return cfg, nil
}

// ResolveAPIBaseURL picks the API origin: override, then environment, then
// the fallback for mode. The result has a scheme and no trailing slash.
func ResolveAPIBaseURL(mode, override string) (string, error) {
	raw := override
	if raw == "" {
		raw = os.Getenv(EnvAPIBaseURL)
	}
	if raw == "" {
		if mode == ModeDevelopment {
			raw = DevelopmentAPIBaseURL
		} else {
			raw = ProductionAPIBaseURL
		}
	}

	raw = strings.TrimRight(ensureScheme(strings.TrimSpace(raw)), "/")
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid API base URL %q", raw)
	}
	return raw, nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "materialhub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "materialhub")
}

// loadDotEnv applies KEY=VALUE pairs from path without overriding variables
// already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds a scheme if the URL has none: http:// for loopback
// hosts, https:// otherwise
func ensureScheme(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	if strings.HasPrefix(raw, "localhost") || strings.HasPrefix(raw, "127.0.0.1") {
		return "http://" + raw
	}
	return "https://" + raw
}
