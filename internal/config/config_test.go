// ABOUTME: Tests for configuration loading and API URL resolution
// ABOUTME: Covers env precedence, .env files and scheme defaults

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cleanEnv(t, map[string]string{"HOME": t.TempDir()})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Mode != ModeProduction {
		t.Errorf("Expected default mode production, got %s", cfg.Mode)
	}
	if cfg.APIBaseURL != ProductionAPIBaseURL {
		t.Errorf("Expected production fallback %s, got %s", ProductionAPIBaseURL, cfg.APIBaseURL)
	}
	if cfg.UploadURL != ProductionAPIBaseURL+"/uploads" {
		t.Errorf("Expected upload URL under base, got %s", cfg.UploadURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %s", cfg.RequestTimeout)
	}
	if cfg.Store != StoreFile {
		t.Errorf("Expected default store file, got %s", cfg.Store)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected default log level warn, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_DevelopmentFallback(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_MODE": "development"})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode")
	}
	if cfg.APIBaseURL != DevelopmentAPIBaseURL {
		t.Errorf("Expected %s, got %s", DevelopmentAPIBaseURL, cfg.APIBaseURL)
	}
}

func TestLoadConfig_ShortModeNames(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_MODE": "dev"})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Mode != ModeDevelopment {
		t.Errorf("Expected dev to normalize to development, got %s", cfg.Mode)
	}
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_MODE": "staging"})

	if _, err := Load(""); err == nil {
		t.Error("Expected error for unknown mode, got nil")
	}
}

func TestLoadConfig_EnvBaseURLBeatsFallback(t *testing.T) {
	cleanEnv(t, map[string]string{
		"MATERIALHUB_MODE":         "development",
		"MATERIALHUB_API_BASE_URL": "https://api.example.com/",
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
}

func TestLoadConfig_OverrideBeatsEnv(t *testing.T) {
	cleanEnv(t, map[string]string{
		"MATERIALHUB_API_BASE_URL": "https://api.example.com",
	})

	cfg, err := Load("localhost:9000")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:9000" {
		t.Errorf("Expected override with http scheme, got %s", cfg.APIBaseURL)
	}
}

func TestLoadConfig_Timeout(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_TIMEOUT": "3"})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.RequestTimeout)
	}
}

func TestLoadConfig_NonPositiveTimeout(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_TIMEOUT": "0"})

	if _, err := Load(""); err == nil {
		t.Error("Expected error for zero timeout, got nil")
	}
}

func TestLoadConfig_InvalidStore(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_STORE": "redis"})

	if _, err := Load(""); err == nil {
		t.Error("Expected error for unknown store, got nil")
	}
}

func TestLoadConfig_ConfigDirFromXDG(t *testing.T) {
	xdg := t.TempDir()
	cleanEnv(t, map[string]string{"XDG_CONFIG_HOME": xdg})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := filepath.Join(xdg, "materialhub")
	if cfg.ConfigDir != want {
		t.Errorf("Expected %s, got %s", want, cfg.ConfigDir)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	cleanEnv(t, map[string]string{"MATERIALHUB_STORE": "memory"})

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	env := "MATERIALHUB_API_BASE_URL=https://dotenv.example.com\nMATERIALHUB_STORE=sqlite\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIBaseURL != "https://dotenv.example.com" {
		t.Errorf("Expected base URL from .env, got %s", cfg.APIBaseURL)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Expected existing env to win over .env, got %s", cfg.Store)
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://api.example.com", "https://api.example.com"},
		{"http://api.example.com", "http://api.example.com"},
		{"api.example.com", "https://api.example.com"},
		{"localhost:8000", "http://localhost:8000"},
		{"127.0.0.1:8000", "http://127.0.0.1:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ensureScheme(tt.in); got != tt.want {
				t.Errorf("ensureScheme(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveAPIBaseURL_Invalid(t *testing.T) {
	cleanEnv(t, nil)

	if _, err := ResolveAPIBaseURL(ModeProduction, "https://"); err == nil {
		t.Error("Expected error for URL without host, got nil")
	}
}
