package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_LoadDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "profiles.json"))

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(settings.Profiles) != 1 {
		t.Fatalf("expected 1 default profile, got %d", len(settings.Profiles))
	}

	active, ok := settings.Active()
	if !ok {
		t.Fatal("expected default profile to be active")
	}
	if active.Name != "Default" {
		t.Errorf("expected Default profile, got %s", active.Name)
	}
	if active.Configured() {
		t.Error("default profile should not be configured (no base URL)")
	}
	if active.PromptText() != DefaultPrompt {
		t.Error("expected default prompt")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	store := NewStore(path)

	settings := Settings{
		Profiles: []Profile{
			{ID: "p1", Name: "Local", BaseURL: "http://localhost:11434/v1", Model: "llava"},
			{ID: "p2", Name: "Cloud", BaseURL: "https://api.example.com/v1", APIKey: "sk-x", Model: "gpt-4o"},
		},
		ActiveID: "p2",
	}

	if err := store.Save(settings); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Profiles) != 2 || got.ActiveID != "p2" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	active, ok := got.Active()
	if !ok || active.Name != "Cloud" {
		t.Errorf("expected active Cloud profile, got %+v", active)
	}
}

func TestStore_LoadRejectsInvalidBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", `{broken`},
		{"missing required fields", `{"profiles": [{"base_url": "http://x"}], "active_id": ""}`},
		{"wrong type", `{"profiles": "nope", "active_id": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profiles.json")
			if err := os.WriteFile(path, []byte(tt.blob), 0o600); err != nil {
				t.Fatal(err)
			}

			if _, err := NewStore(path).Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStore_Activate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	store := NewStore(path)

	settings := Settings{
		Profiles: []Profile{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
		},
		ActiveID: "a",
	}
	if err := store.Save(settings); err != nil {
		t.Fatal(err)
	}

	t.Run("switches active profile", func(t *testing.T) {
		got, err := store.Activate("b")
		if err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if got.ActiveID != "b" {
			t.Errorf("expected active b, got %s", got.ActiveID)
		}

		// Persisted
		reloaded, _ := store.Load()
		if reloaded.ActiveID != "b" {
			t.Error("activation was not persisted")
		}
	})

	t.Run("unknown id fails", func(t *testing.T) {
		if _, err := store.Activate("missing"); !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})
}
