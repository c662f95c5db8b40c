package providers

import (
	"context"
	"sync"
)

// MockTranscriber is a test double for the Transcriber interface.
type MockTranscriber struct {
	mu sync.Mutex

	// TranscribeFunc, when set, handles each call. The default returns
	// Response with no error.
	TranscribeFunc func(ctx context.Context, image []byte, prompt string) (string, error)

	// Response is returned when TranscribeFunc is nil.
	Response string

	// Calls records the prompts of every invocation, in order.
	Calls []string
}

// TranscribePage records the call and dispatches to TranscribeFunc.
func (m *MockTranscriber) TranscribePage(ctx context.Context, image []byte, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, image, prompt)
	}
	return m.Response, nil
}

// Name returns the mock identifier.
func (m *MockTranscriber) Name() string { return "mock" }

// CallCount returns the number of transcription calls made.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
