package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the bindery home directory.
	DefaultDirName = ".bindery"

	// DocumentsDirName is the subdirectory holding uploaded PDF files.
	DocumentsDirName = "documents"

	// ExportsDirName is the subdirectory holding generated EPUB files.
	ExportsDirName = "exports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// ProfilesFileName is the provider profiles JSON blob.
	ProfilesFileName = "profiles.json"
)

// Dir represents the bindery home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.bindery).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ProfilesPath returns the path to the provider profiles file.
func (d *Dir) ProfilesPath() string {
	return filepath.Join(d.path, ProfilesFileName)
}

// DocumentsDir returns the directory for uploaded PDF documents.
func (d *Dir) DocumentsDir() string {
	return filepath.Join(d.path, DocumentsDirName)
}

// DocumentPath returns the path to the stored PDF for a document.
func (d *Dir) DocumentPath(docID string) string {
	return filepath.Join(d.DocumentsDir(), docID+".pdf")
}

// ExportsDir returns the directory for exported EPUB files.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DocumentsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	if err := os.MkdirAll(d.ExportsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
