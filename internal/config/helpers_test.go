// ABOUTME: Test helpers for config tests
// ABOUTME: Unsets every variable Load reads so the host environment cannot leak in

package config

import (
	"os"
	"testing"
)

// configEnv lists every variable Load and DefaultConfigDir consult
var configEnv = []string{
	EnvMode, EnvAPIBaseURL, EnvTimeout, EnvConfigDir, EnvStore, EnvLogLevel, EnvLogFormat,
	"XDG_CONFIG_HOME",
}

// cleanEnv unsets configEnv, then applies extra. t.Setenv restores the
// previous values when the test ends; the variables are unset rather than
// blank so godotenv still fills them from a .env file.
func cleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for key, value := range extra {
		t.Setenv(key, value)
	}
}
