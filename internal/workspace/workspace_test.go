package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReset_RemovesAllFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pkl", "b.pkl", "c.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	if err := Reset(dir); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("workspace directory removed by Reset: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty workspace, found %d entries", len(entries))
	}
}

func TestReset_EmptyDirIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := Reset(dir); err != nil {
		t.Fatalf("Reset on empty dir: %v", err)
	}
}

func TestReset_MissingDirFails(t *testing.T) {
	err := Reset(filepath.Join(t.TempDir(), "does-not-exist"))
	var resetErr *ResetError
	if !errors.As(err, &resetErr) {
		t.Fatalf("expected ResetError, got %v", err)
	}
}

func TestReset_RefusesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}

	err := Reset(dir)
	var resetErr *ResetError
	if !errors.As(err, &resetErr) {
		t.Fatalf("expected ResetError for subdirectory, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "nested")); statErr != nil {
		t.Fatalf("subdirectory should be left in place: %v", statErr)
	}
}
