package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fsys := New()
	testPath := filepath.Join(t.TempDir(), "summary.md")

	if err := fsys.WriteFile(testPath, []byte("first")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fsys.WriteFile(testPath, []byte("second")); err != nil {
		t.Fatalf("WriteFile overwrite failed: %v", err)
	}

	data, err := os.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, err := os.ReadDir(filepath.Dir(testPath))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fsys := New()
	testPath := filepath.Join(t.TempDir(), "debug", "frames", "frame-0001.png")

	if err := fsys.WriteFile(testPath, []byte("png")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(testPath); err != nil {
		t.Errorf("expected %s to exist: %v", testPath, err)
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fsys := New()
	dir := filepath.Join(t.TempDir(), "out", "videos")

	if err := fsys.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Errorf("expected directory %s: %v", dir, err)
	}
	// existing directories are fine
	if err := fsys.MkdirAll(dir); err != nil {
		t.Errorf("MkdirAll on existing dir failed: %v", err)
	}
}
