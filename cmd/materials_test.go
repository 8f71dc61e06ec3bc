// ABOUTME: Tests for the material commands
// ABOUTME: Exercises listing, details, likes, uploads and the catalogs against the fake backend

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/fakeapi"
	"github.com/materialhub/materialhub-cli/internal/recent"
)

func writeMediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not really media"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMaterialsList_ShowsApprovedOnly(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	code := runMaterialsList(context.Background(), &buf, client.ListParams{PageParams: client.PageParams{Page: 1, Size: 20}})
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	out := buf.String()
	for _, want := range []string{"ID", "TITLE", "Window smoke from T spawn", "Banana molotov", "(3 total)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Long doors HE") {
		t.Errorf("pending material listed:\n%s", out)
	}
}

func TestMaterialsList_Filters(t *testing.T) {
	fake := setupBackend(t)

	var buf bytes.Buffer
	code := runMaterialsList(context.Background(), &buf, client.ListParams{PageParams: client.PageParams{Page: 1, Size: 20}, Category: "smoke", MapName: "mirage"})
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}
	if !strings.Contains(buf.String(), "(1 total)") {
		t.Errorf("expected one match, got\n%s", buf.String())
	}

	req, ok := fake.LastRequest()
	if !ok {
		t.Fatal("expected a recorded request")
	}
	if !strings.Contains(req.Query, "category=smoke") || !strings.Contains(req.Query, "map_name=mirage") {
		t.Errorf("expected filters in query, got %q", req.Query)
	}
}

func TestMaterialsList_Empty(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	runMaterialsList(context.Background(), &buf, client.ListParams{PageParams: client.PageParams{Page: 1, Size: 20}, Search: "no such thing"})
	if !strings.Contains(buf.String(), "No materials found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestMaterialShow(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runMaterialShow(context.Background(), &buf, "1"); code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	out := buf.String()
	for _, want := range []string{"Title:       Window smoke from T spawn", "Map:         mirage", "Uploader:    admin", "/uploads/window-smoke.mp4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestMaterialShow_InvalidID(t *testing.T) {
	fake := setupBackend(t)

	var buf bytes.Buffer
	if code := runMaterialShow(context.Background(), &buf, "abc"); code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(buf.String(), `invalid id "abc"`) {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if len(fake.Requests()) != 0 {
		t.Error("expected no backend request for an invalid id")
	}
}

func TestMaterialShow_NotFound(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runMaterialShow(context.Background(), &buf, "999"); code != exitRejected {
		t.Fatalf("expected exit %d, got %d", exitRejected, code)
	}
	if !strings.Contains(buf.String(), "Material not found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestMaterialLike(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runMaterialLike(context.Background(), &buf, "1"); code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), "Liked material 1 (13 likes)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestMaterialUpload_RequiresLogin(t *testing.T) {
	fake := setupBackend(t)
	path := writeMediaFile(t, "clip.mp4")

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, path, client.UploadRequest{Title: "Clip", Category: "smoke"}, false)
	if code != exitRejected {
		t.Fatalf("expected exit %d, got %d", exitRejected, code)
	}
	if !strings.Contains(buf.String(), "redirected to /login?redirect=/upload") {
		t.Errorf("expected redirect to login, got %q", buf.String())
	}
	if len(fake.Requests()) != 0 {
		t.Error("expected no backend request for a guest upload")
	}
}

func TestMaterialUpload(t *testing.T) {
	fake := setupBackend(t)
	loginAs(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	path := writeMediaFile(t, "clip.mp4")

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, path, client.UploadRequest{
		Title:    "Short A smoke",
		Category: "smoke",
		MapName:  "mirage",
		Tags:     "a-site",
	}, false)
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), `Uploaded "Short A smoke" as material 6 (video`) {
		t.Errorf("unexpected output: %q", buf.String())
	}

	m, ok := fake.Material(6)
	if !ok {
		t.Fatal("expected material 6 on the backend")
	}
	if m.IsApproved {
		t.Error("expected a new upload to await moderation")
	}
	if m.MapName != "mirage" || m.Tags != "a-site" {
		t.Errorf("unexpected material fields: %+v", m)
	}

	if got := recent.New(configDir).List(); len(got) != 1 || got[0] != path {
		t.Errorf("expected %s to be remembered, got %v", path, got)
	}
}

func TestMaterialUpload_PromptsForTitleAndCategory(t *testing.T) {
	setupBackend(t)
	loginAs(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	path := writeMediaFile(t, "pop.gif")
	withStdin(t, "Popflash\nflash\n")

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, path, client.UploadRequest{}, false)
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), `Uploaded "Popflash"`) {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestMaterialUpload_RejectsUnsupportedFile(t *testing.T) {
	fake := setupBackend(t)
	loginAs(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	path := writeMediaFile(t, "notes.txt")
	before := len(fake.Requests())

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, path, client.UploadRequest{Title: "Notes", Category: "other"}, false)
	if code != exitRejected {
		t.Fatalf("expected exit %d, got %d", exitRejected, code)
	}
	out := buf.String()
	if !strings.Contains(out, "Warning:") || !strings.Contains(out, "--force") {
		t.Errorf("expected warning and force hint, got %q", out)
	}
	if len(fake.Requests()) != before {
		t.Error("expected nothing sent to the backend")
	}
}

func TestMaterialUpload_ForceSendsAnyway(t *testing.T) {
	setupBackend(t)
	loginAs(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	path := writeMediaFile(t, "notes.txt")

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, path, client.UploadRequest{Title: "Notes", Category: "other"}, true)
	if code != exitRejected {
		t.Fatalf("expected the backend to refuse with exit %d, got %d\n%s", exitRejected, code, buf.String())
	}
	if !strings.Contains(buf.String(), "unsupported file type") {
		t.Errorf("expected backend detail, got %q", buf.String())
	}
}

func TestMaterialUpload_MissingFile(t *testing.T) {
	setupBackend(t)
	loginAs(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)

	var buf bytes.Buffer
	code := runMaterialUpload(context.Background(), &buf, filepath.Join(t.TempDir(), "gone.mp4"), client.UploadRequest{Title: "x", Category: "smoke"}, false)
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
}

func TestCatalog_Categories(t *testing.T) {
	setupBackend(t)

	var buf bytes.Buffer
	if code := runCatalog(context.Background(), &buf, true); code != exitOK {
		t.Fatalf("expected exit %d, got %d\n%s", exitOK, code, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "VALUE") || !strings.Contains(out, "HE Grenade") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCatalog_MapsJSON(t *testing.T) {
	setupBackend(t)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runCatalog(context.Background(), &buf, false); code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}
	var maps []string
	if err := json.Unmarshal(buf.Bytes(), &maps); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(maps) != 2 {
		t.Errorf("expected the two maps with approved materials, got %v", maps)
	}
}
