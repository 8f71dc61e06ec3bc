// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/materialhub/materialhub-cli/internal/client"
)

func TestFormatHealthHuman(t *testing.T) {
	output := formatHealthHuman("http://localhost:8000", "development", &client.HealthStatus{Status: "healthy"})

	if !strings.Contains(output, "http://localhost:8000") {
		t.Error("expected output to contain backend URL")
	}
	if !strings.Contains(output, "Mode:    development") {
		t.Error("expected output to contain the mode")
	}
	if !strings.Contains(output, "Status:  healthy") {
		t.Error("expected output to contain the status")
	}
}

func TestFormatHealthJSON(t *testing.T) {
	out := formatHealthJSON("http://localhost:8000", "production", &client.HealthStatus{Status: "ok"})

	if out["backend"] != "http://localhost:8000" {
		t.Errorf("expected backend URL, got %v", out["backend"])
	}
	if out["healthy"] != true {
		t.Errorf("expected healthy true, got %v", out["healthy"])
	}
	if out["status"] != "ok" {
		t.Errorf("expected status ok, got %v", out["status"])
	}
}

func TestHealthCommand_Success(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != exitOK {
		t.Fatalf("expected exit code %d, got %d\n%s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), "Status:  healthy") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestHealthCommand_Unhealthy(t *testing.T) {
	fake := setupBackend(t)
	fake.SetHealthy(false)

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.Contains(buf.String(), "database not available") {
		t.Errorf("expected backend detail, got %q", buf.String())
	}
}

func TestHealthCommand_JSONFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	setFlags(t, server.URL)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if parsed["healthy"] != false {
		t.Errorf("expected healthy false, got %v", parsed["healthy"])
	}
	if parsed["backend"] != server.URL {
		t.Errorf("expected backend %s, got %v", server.URL, parsed["backend"])
	}
}

func TestHealthCommand_ConnectionRefused(t *testing.T) {
	setFlags(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	if code := runHealth(context.Background(), &buf); code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.HasPrefix(buf.String(), "Error:") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
