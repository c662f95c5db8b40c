package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-bindery")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-bindery" {
			t.Errorf("expected path /tmp/test-bindery, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-bindery")

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-bindery/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("ProfilesPath", func(t *testing.T) {
		expected := "/tmp/test-bindery/profiles.json"
		if dir.ProfilesPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ProfilesPath())
		}
	})

	t.Run("DocumentPath", func(t *testing.T) {
		expected := "/tmp/test-bindery/documents/abc.pdf"
		if dir.DocumentPath("abc") != expected {
			t.Errorf("expected %s, got %s", expected, dir.DocumentPath("abc"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	binderyDir := filepath.Join(tmpDir, "bindery-test")

	dir, err := New(binderyDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Fatal("directory should not exist yet")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	for _, p := range []string{dir.DocumentsDir(), dir.ExportsDir()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}
