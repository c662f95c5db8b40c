package transcribe

import (
	"context"
	"sync"
)

// State is the lifecycle of one transcription run.
// A document with no run (or a finished one) is idle; running transitions
// to cancelled or completed, and either way the next run starts fresh.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

// Run is the transient state of one transcription pass over a document.
// At most one run exists per document; a new run supersedes the old one.
type Run struct {
	docID      string
	startIndex int
	totalPages int

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	state     State
	completed int // pages finished (success or error) this run
}

func newRun(docID string, startIndex, totalPages int, cancel context.CancelFunc) *Run {
	return &Run{
		docID:      docID,
		startIndex: startIndex,
		totalPages: totalPages,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      StateRunning,
	}
}

// Done returns a channel closed when the run's goroutine has exited.
func (r *Run) Done() <-chan struct{} { return r.done }

// State returns the run's current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Progress returns pages completed this run and the document total.
func (r *Run) Progress() (completed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.totalPages
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) pageDone() {
	r.mu.Lock()
	r.completed++
	r.mu.Unlock()
}

// Status is a snapshot of transcription progress for one document,
// consumed by the UI for placeholders and progress counters.
type Status struct {
	State         State `json:"state"`
	Running       bool  `json:"running"`
	Completed     int   `json:"completed"`
	Total         int   `json:"total"`
	LastCompleted *int  `json:"last_completed,omitempty"`
}
