// ABOUTME: Tests for the check command
// ABOUTME: Validates pass/fail verdicts, the local size limit and output formats

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/materialhub/materialhub-cli/internal/media"
)

func withMaxSize(t *testing.T, mb int) {
	t.Helper()
	old := maxSizeMB
	maxSizeMB = mb
	t.Cleanup(func() { maxSizeMB = old })
}

func sizedFile(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", name, err)
	}
	return path
}

func TestCheckResult_Passed(t *testing.T) {
	if !(checkResult{}).passed() {
		t.Error("expected a result without problems to pass")
	}
	if (checkResult{problems: []string{"too big"}}).passed() {
		t.Error("expected a result with problems to fail")
	}
}

func TestEvaluate_LocalLimit(t *testing.T) {
	info := media.Info{Path: "clip.mp4", Size: 3 << 20, FileType: "video"}

	if r := evaluate(info, 5<<20); !r.passed() {
		t.Errorf("expected 3 MiB to pass a 5 MiB limit, got %v", r.problems)
	}
	r := evaluate(info, 2<<20)
	if r.passed() {
		t.Fatal("expected 3 MiB to fail a 2 MiB limit")
	}
	if !strings.Contains(r.problems[0], "over the 2.0 MiB limit") {
		t.Errorf("unexpected problem %q", r.problems[0])
	}
}

func TestEvaluate_OversizeReportedOnce(t *testing.T) {
	info := media.Info{Path: "huge.mp4", Size: media.MaxFileSize + 1, Warnings: []string{"file is too big"}}

	r := evaluate(info, 10<<20)
	if len(r.problems) != 1 {
		t.Errorf("expected only the backend limit warning, got %v", r.problems)
	}
}

func TestValidateMaxSize(t *testing.T) {
	tests := []struct {
		mb      int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{50, false},
		{51, true},
	}
	for _, tt := range tests {
		if err := validateMaxSize(tt.mb); (err != nil) != tt.wantErr {
			t.Errorf("validateMaxSize(%d) error = %v, wantErr %v", tt.mb, err, tt.wantErr)
		}
	}
}

func TestFormatCheckHuman(t *testing.T) {
	results := []checkResult{
		{path: "a.png", size: 1024, fileType: "image"},
		{path: "b.txt", problems: []string{"unsupported extension"}},
	}

	out := formatCheckHuman(results)
	if !strings.Contains(out, "✓ a.png: image, 1.0 KiB") {
		t.Errorf("expected passing line\n%s", out)
	}
	if !strings.Contains(out, "✗ b.txt: unsupported extension") {
		t.Errorf("expected failing line\n%s", out)
	}
	if !strings.Contains(out, "FAILED: 1 file(s) would be rejected") {
		t.Errorf("expected summary\n%s", out)
	}
}

func TestFormatCheckJSON(t *testing.T) {
	out := formatCheckJSON([]checkResult{{path: "a.png", size: 10, fileType: "image"}})

	if out["status"] != "passed" {
		t.Errorf("expected status passed, got %v", out["status"])
	}
	files, ok := out["files"].([]map[string]any)
	if !ok || len(files) != 1 || files[0]["passed"] != true {
		t.Errorf("unexpected files: %v", out["files"])
	}
}

func TestCheckCommand_AllPass(t *testing.T) {
	withMaxSize(t, 50)
	img := sizedFile(t, "a.png", 2048)
	vid := sizedFile(t, "b.webm", 4096)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf, []string{img, vid}); code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), "PASSED: All 2 file(s) can be uploaded") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestCheckCommand_FailsOverLocalLimit(t *testing.T) {
	withMaxSize(t, 1)
	vid := sizedFile(t, "big.mp4", 2<<20)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf, []string{vid}); code != exitRejected {
		t.Fatalf("expected exit %d, got %d\n%s", exitRejected, code, buf.String())
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	withMaxSize(t, 50)
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
	txt := sizedFile(t, "notes.txt", 10)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf, []string{txt}); code != exitRejected {
		t.Fatalf("expected exit %d, got %d", exitRejected, code)
	}
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if parsed["status"] != "failed" {
		t.Errorf("expected status failed, got %v", parsed["status"])
	}
}

func TestCheckCommand_MissingFile(t *testing.T) {
	withMaxSize(t, 50)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf, []string{filepath.Join(t.TempDir(), "gone.png")}); code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
}

func TestCheckCommand_InvalidMaxSize(t *testing.T) {
	withMaxSize(t, 500)

	var buf bytes.Buffer
	if code := runCheck(context.Background(), &buf, []string{"whatever.png"}); code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(buf.String(), "--max-size must be between 1 and 50") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
