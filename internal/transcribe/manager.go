// Package transcribe drives the page-by-page vision-model transcription
// loop: resumable, cancelable, strictly in page order.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bindery/bindery/internal/config"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/pdf"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/providers"
)

// ErrNoBaseURL means the active profile cannot be used for a run.
// The run refuses to start and no state is mutated.
var ErrNoBaseURL = errors.New("provider profile has no base URL configured")

// ErrDocumentNotFound means the document id is unknown to the store.
var ErrDocumentNotFound = errors.New("document not found")

// ClientFactory builds a Transcriber for a profile snapshot. Swapped out
// in tests for a mock.
type ClientFactory func(p profile.Profile, logger *slog.Logger) providers.Transcriber

// ManagerConfig configures a new Manager.
type ManagerConfig struct {
	Store    *document.Store
	Renderer pdf.Renderer

	// Timeout and MaxRetries apply to provider clients built by the
	// default factory. Zero values fall through to the client defaults.
	Timeout    time.Duration
	MaxRetries int

	// NewClient defaults to building an OpenAI-compatible client from the
	// profile.
	NewClient ClientFactory

	Logger *slog.Logger
}

// Manager owns transcription runs, one active run per document.
type Manager struct {
	store     *document.Store
	renderer  pdf.Renderer
	newClient ClientFactory
	logger    *slog.Logger

	mu   sync.Mutex
	runs map[string]*Run
}

// NewManager creates a run manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newClient := cfg.NewClient
	if newClient == nil {
		newClient = func(p profile.Profile, logger *slog.Logger) providers.Transcriber {
			return providers.NewClient(providers.ClientConfig{
				BaseURL:    p.BaseURL,
				APIKey:     config.ResolveEnvVars(p.APIKey),
				Model:      p.Model,
				Timeout:    cfg.Timeout,
				MaxRetries: cfg.MaxRetries,
				Logger:     logger,
			})
		}
	}

	return &Manager{
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		newClient: newClient,
		logger:    logger.With("component", "transcribe"),
		runs:      make(map[string]*Run),
	}
}

// Start begins a fresh run at page 0.
// ctx must outlive the HTTP request that triggered the run; the run ends
// when ctx is cancelled, the document is exhausted, or Cancel is called.
func (m *Manager) Start(ctx context.Context, docID string, prof profile.Profile) (*Run, error) {
	return m.start(ctx, docID, prof, false, false)
}

// Resume continues after a cancellation or partial failure, starting at
// lastCompletedIndex+1. It is a no-op returning (nil, nil) when every page
// has already completed.
func (m *Manager) Resume(ctx context.Context, docID string, prof profile.Profile) (*Run, error) {
	return m.start(ctx, docID, prof, true, false)
}

// Rescan discards all transcribed text for the document and starts over at
// page 0: slots back to pending, progress cleared.
func (m *Manager) Rescan(ctx context.Context, docID string, prof profile.Profile) (*Run, error) {
	return m.start(ctx, docID, prof, false, true)
}

// Cancel requests cooperative cancellation of the document's run and waits
// for the loop to exit. Cancelling an idle document is a no-op.
func (m *Manager) Cancel(docID string) {
	m.mu.Lock()
	run := m.runs[docID]
	m.mu.Unlock()

	if run == nil {
		return
	}
	run.cancel()
	<-run.Done()
}

// Status reports the run state plus progress counters for a document.
func (m *Manager) Status(docID string) Status {
	m.mu.Lock()
	run := m.runs[docID]
	m.mu.Unlock()

	status := Status{State: StateIdle}
	if run != nil {
		status.State = run.State()
		status.Running = status.State == StateRunning
		status.Completed, status.Total = run.Progress()
	}
	if last, ok := m.store.LastCompleted(docID); ok {
		status.LastCompleted = &last
	}
	if doc, ok := m.store.Get(docID); ok {
		status.Total = doc.PageCount
	}
	return status
}

// start supersedes any previous run and registers the new one in a single
// critical section, so concurrent callers can never each observe "no active
// run" and race a second loop into existence. The start index (and Rescan's
// page reset) is computed inside that section, after the old loop has fully
// exited, so it cannot go stale under a still-running run.
func (m *Manager) start(ctx context.Context, docID string, prof profile.Profile, resume, reset bool) (*Run, error) {
	doc, ok := m.store.Get(docID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}
	if !prof.Configured() {
		return nil, ErrNoBaseURL
	}

	m.mu.Lock()
	for {
		prev := m.runs[docID]
		if prev == nil {
			break
		}
		// Waiting on the loop with m.mu held would deadlock against other
		// Manager methods, so drop the lock, wait, and re-check: another
		// caller may have registered its own run in the window.
		m.mu.Unlock()
		prev.cancel()
		<-prev.Done()
		m.mu.Lock()
		if m.runs[docID] == prev {
			delete(m.runs, docID)
		}
	}

	if reset {
		if err := m.store.ResetPages(docID); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}

	startIndex := 0
	if resume {
		if last, ok := m.store.LastCompleted(docID); ok {
			startIndex = last + 1
		}
		if startIndex >= doc.PageCount {
			m.mu.Unlock()
			return nil, nil
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(docID, startIndex, doc.PageCount, cancel)
	m.runs[docID] = run
	m.mu.Unlock()

	go m.loop(runCtx, run, doc, prof)
	return run, nil
}

// loop processes pages [startIndex, totalPages) in strictly ascending order.
// A single page's failure is recorded in its slot and the loop continues;
// only cancellation stops it early.
func (m *Manager) loop(ctx context.Context, run *Run, doc document.Document, prof profile.Profile) {
	defer close(run.done)

	client := m.newClient(prof, m.logger)
	prompt := prof.PromptText()
	log := m.logger.With("doc_id", doc.ID)

	log.Info("transcription run started",
		"start", run.startIndex, "total", run.totalPages, "model", prof.Model)

	for i := run.startIndex; i < run.totalPages; i++ {
		if ctx.Err() != nil {
			run.setState(StateCancelled)
			log.Info("transcription run cancelled", "next_page", i)
			return
		}

		slot, aborted := m.transcribeOne(ctx, client, doc, i, prompt, log)
		if aborted {
			run.setState(StateCancelled)
			log.Info("transcription run cancelled", "next_page", i)
			return
		}

		// Streamed per-page update: the UI sees partial progress.
		if err := m.store.SetPage(doc.ID, i, slot); err != nil {
			// Document removed mid-run; nothing left to transcribe into.
			run.setState(StateCancelled)
			log.Warn("transcription target gone", "err", err)
			return
		}
		m.store.SetLastCompleted(doc.ID, i)
		run.pageDone()
	}

	run.setState(StateCompleted)
	log.Info("transcription run completed", "pages", run.totalPages-run.startIndex)
}

// transcribeOne renders and transcribes a single page.
// aborted is true only for cancellation; per-page failures come back as an
// error-marker slot.
func (m *Manager) transcribeOne(ctx context.Context, client providers.Transcriber, doc document.Document, index int, prompt string, log *slog.Logger) (document.PageSlot, bool) {
	image, err := m.renderer.RenderPage(ctx, doc.PDFPath, index)
	if ctx.Err() != nil {
		return document.PageSlot{}, true
	}
	if err != nil {
		log.Warn("page render failed", "page", index, "err", err)
		return errorSlot(index, err), false
	}

	text, err := client.TranscribePage(ctx, image, prompt)
	if ctx.Err() != nil {
		// The in-flight request was aborted; the page stays unmarked so a
		// resume reprocesses it.
		return document.PageSlot{}, true
	}
	if err != nil {
		log.Warn("page transcription failed", "page", index, "err", err)
		return errorSlot(index, err), false
	}

	return document.PageSlot{Text: text, Provenance: document.ProvenanceVLMFilled}, false
}

// errorSlot builds the synthetic marker recorded for a failed page. The
// page number is 1-based to match what the reader sees.
func errorSlot(index int, err error) document.PageSlot {
	return document.PageSlot{
		Text:       fmt.Sprintf("[Page %d transcription failed: %s]", index+1, err.Error()),
		Provenance: document.ProvenanceVLMError,
	}
}
