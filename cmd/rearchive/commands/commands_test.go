package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rejaad/rearchive/internal/db"
	"github.com/rejaad/rearchive/internal/tree"
	"github.com/rejaad/rearchive/pkg/models"
)

func writeZip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fixture.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"docs/a.txt":      "alpha",
		"docs/deep/b.txt": "beta",
		"top.txt":         "top",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "settings.json")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestExtractSelectedFolder(t *testing.T) {
	archive := writeZip(t, t.TempDir())
	dest := t.TempDir()

	out, err := run(t, "extract", archive, "docs", "-o", dest, "--quiet")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "Successfully extracted 2 files!") {
		t.Errorf("Unexpected output %q", out)
	}
	if !exists(filepath.Join(dest, "docs", "a.txt")) || !exists(filepath.Join(dest, "docs", "deep", "b.txt")) {
		t.Error("Folder contents should be extracted")
	}
	if exists(filepath.Join(dest, "top.txt")) {
		t.Error("Unselected file should not be extracted")
	}
}

func TestExtractAll(t *testing.T) {
	archive := writeZip(t, t.TempDir())
	dest := t.TempDir()

	out, err := run(t, "extract", archive, "-o", dest, "--quiet")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "Extraction completed successfully!") {
		t.Errorf("Unexpected output %q", out)
	}
	for _, p := range []string{"docs/a.txt", "docs/deep/b.txt", "top.txt"} {
		if !exists(filepath.Join(dest, filepath.FromSlash(p))) {
			t.Errorf("Expected %s to be extracted", p)
		}
	}
}

func TestExtractMissingPath(t *testing.T) {
	archive := writeZip(t, t.TempDir())

	_, err := run(t, "extract", archive, "nope.txt", "-o", t.TempDir(), "--quiet")
	if err == nil || !strings.Contains(err.Error(), "nope.txt") {
		t.Errorf("Expected missing path error, got %v", err)
	}
}

func TestShowCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "show", path)
	if err == nil || !strings.Contains(err.Error(), "failed to read archive") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestShow(t *testing.T) {
	archive := writeZip(t, t.TempDir())

	out, err := run(t, "show", archive)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, "docs/") || !strings.Contains(out, "top.txt") {
		t.Errorf("Top level missing from output %q", out)
	}
	if strings.Contains(out, "a.txt") {
		t.Error("Nested files should not be listed at the top level")
	}

	out, err = run(t, "show", archive, "docs")
	if err != nil {
		t.Fatalf("show folder failed: %v", err)
	}
	if !strings.Contains(out, "a.txt") || !strings.Contains(out, "deep/") {
		t.Errorf("Folder contents missing from output %q", out)
	}

	if _, err := run(t, "show", archive, "missing"); err == nil {
		t.Error("Expected error for unknown folder")
	}
}

func TestDebugArchive(t *testing.T) {
	archive := writeZip(t, t.TempDir())

	out, err := run(t, "debug-archive", archive)
	if err != nil {
		t.Fatalf("debug-archive failed: %v", err)
	}
	if !strings.Contains(out, "Format: zip") || !strings.Contains(out, "Found 3 entries") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestDebugModeTree(t *testing.T) {
	archive := writeZip(t, t.TempDir())

	out, err := run(t, "--debug", archive)
	if err != nil {
		t.Fatalf("debug mode failed: %v", err)
	}
	if !strings.Contains(out, "=== Debug Mode: Archive Tree ===") {
		t.Errorf("Missing header in %q", out)
	}
	if !strings.Contains(out, "    b.txt (4 bytes)") {
		t.Errorf("Nested file should be indented twice, got %q", out)
	}
}

func TestStats(t *testing.T) {
	if _, err := db.GetDB(); err != nil {
		t.Skipf("Skipping test, DuckDB unavailable: %v", err)
	}
	archive := writeZip(t, t.TempDir())

	out, err := run(t, "stats", archive)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "Files:   3") || !strings.Contains(out, "Folders: 2") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestResolveTargets(t *testing.T) {
	root := tree.Build([]models.Entry{
		{Path: "a/b/c.txt"},
		{Path: "a/d.txt"},
		{Path: "e.txt"},
	})

	got, err := resolveTargets(root, []string{"a", "a/d.txt", "e.txt"})
	if err != nil {
		t.Fatalf("resolveTargets failed: %v", err)
	}
	want := []string{"a/b/c.txt", "a/d.txt", "e.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolveTargets = %v, want %v", got, want)
	}

	if _, err := resolveTargets(root, []string{"a", "x/y"}); err == nil {
		t.Error("Expected error for unknown path")
	}
}
