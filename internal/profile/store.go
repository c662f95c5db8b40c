package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrProfileNotFound is returned when activating an unknown profile id.
var ErrProfileNotFound = errors.New("profile not found")

// Store persists Settings as a single JSON blob on disk.
// Loads and saves happen at defined boundaries (process start, explicit
// user saves); nothing here is ambient global state.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and validates the settings blob.
// A missing file yields DefaultSettings without creating it.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read profiles: %w", err)
	}

	if err := ValidateSettingsJSON(data); err != nil {
		return Settings{}, fmt.Errorf("invalid profiles file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return settings, nil
}

// Save validates and writes the settings blob atomically.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := ValidateSettingsJSON(data); err != nil {
		return fmt.Errorf("refusing to save invalid profiles: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace profiles: %w", err)
	}
	return nil
}

// Activate marks the given profile id as active and persists the change.
func (s *Store) Activate(id string) (Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return Settings{}, err
	}
	if _, ok := settings.ByID(id); !ok {
		return Settings{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	settings.ActiveID = id
	if err := s.Save(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
