// Package providers implements the OpenAI-compatible chat-completions
// client used for vision-model page transcription.
package providers

import "context"

// Transcriber produces page text from a rendered page image.
type Transcriber interface {
	// TranscribePage sends one page image plus the transcription prompt to
	// the provider and returns the model's text.
	TranscribePage(ctx context.Context, image []byte, prompt string) (string, error)

	// Name returns the client identifier.
	Name() string
}

// ModelLister enumerates the models a provider exposes.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// MaxCompletionTokens caps the transcription response size per page.
const MaxCompletionTokens = 4096
