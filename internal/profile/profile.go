// Package profile manages provider profiles: the endpoint, credentials,
// model, and prompt used for vision-model transcription.
package profile

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultPrompt is the stock transcription instruction for new profiles.
const DefaultPrompt = "Transcribe all text on this book page exactly as printed. " +
	"Preserve paragraph breaks. Do not add commentary, headers, or page numbers " +
	"that are not part of the body text. If the page is blank, return nothing."

// Profile is a passive configuration record consumed by the transcription
// driver. It is snapshotted at run start; later edits never affect an
// in-flight run.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
}

// Configured reports whether the profile can be used for a run.
// Only the base URL is required; local servers commonly need no key.
func (p Profile) Configured() bool {
	return strings.TrimSpace(p.BaseURL) != ""
}

// PromptText returns the profile's prompt, falling back to DefaultPrompt.
func (p Profile) PromptText() string {
	if strings.TrimSpace(p.Prompt) == "" {
		return DefaultPrompt
	}
	return p.Prompt
}

// Settings is the persisted profile state: the profile list plus the id of
// the profile active for transcription and model listing.
type Settings struct {
	Profiles []Profile `json:"profiles"`
	ActiveID string    `json:"active_id"`
}

// Active returns the active profile.
func (s Settings) Active() (Profile, bool) {
	for _, p := range s.Profiles {
		if p.ID == s.ActiveID {
			return p, true
		}
	}
	return Profile{}, false
}

// ByID returns the profile with the given id.
func (s Settings) ByID(id string) (Profile, bool) {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// DefaultSettings returns the initial settings written on first run: one
// unconfigured profile the user fills in.
func DefaultSettings() Settings {
	p := Profile{
		ID:     uuid.New().String(),
		Name:   "Default",
		Prompt: DefaultPrompt,
	}
	return Settings{
		Profiles: []Profile{p},
		ActiveID: p.ID,
	}
}
