package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a document id is not in the store.
var ErrNotFound = errors.New("document not found")

// entry is one arena slot. The pages slice is replaced wholesale on every
// update so concurrent readers never observe a torn array.
type entry struct {
	doc   Document
	pages []PageSlot

	// lastCompleted is the highest page index a transcription run has
	// finished (success or error). -1 means no page has completed yet.
	lastCompleted int
}

// Store is an in-memory arena of documents keyed by id.
// It is safe for concurrent use; background transcription runs write into
// it while HTTP handlers read, so all returned slices are copies.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Add inserts a document with its initial page slots.
func (s *Store) Add(doc Document, pages []PageSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[doc.ID] = &entry{
		doc:           doc,
		pages:         append([]PageSlot(nil), pages...),
		lastCompleted: -1,
	}
}

// Get returns a document by id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Document{}, false
	}
	return e.doc, true
}

// List returns all documents ordered by creation time.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.entries))
	for _, e := range s.entries {
		docs = append(docs, e.doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

// Pages returns a copy of the document's page slots.
func (s *Store) Pages(id string) ([]PageSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return append([]PageSlot(nil), e.pages...), true
}

// PageTexts returns a copy of the document's page texts.
func (s *Store) PageTexts(id string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	texts := make([]string, len(e.pages))
	for i, p := range e.pages {
		texts[i] = p.Text
	}
	return texts, true
}

// SetPage replaces one page slot. The page array is copied and swapped so
// readers holding a previous snapshot are unaffected.
func (s *Store) SetPage(id string, index int, slot PageSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if index < 0 || index >= len(e.pages) {
		return fmt.Errorf("page index %d out of range [0,%d)", index, len(e.pages))
	}

	pages := append([]PageSlot(nil), e.pages...)
	pages[index] = slot
	e.pages = pages
	return nil
}

// ResetPages clears all page text back to the pending state and forgets
// transcription progress. Used by the rescan flow.
func (s *Store) ResetPages(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.pages = PendingSlots(len(e.pages))
	e.lastCompleted = -1
	return nil
}

// SetLastCompleted advances the transcription progress marker.
// The index only ever moves forward within a run; a stale or out-of-order
// write is ignored.
func (s *Store) SetLastCompleted(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if index > e.lastCompleted {
		e.lastCompleted = index
	}
	return nil
}

// LastCompleted returns the highest completed page index for the document.
// The second return is false when no page has completed since ingest or the
// last rescan.
func (s *Store) LastCompleted(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.lastCompleted < 0 {
		return -1, false
	}
	return e.lastCompleted, true
}

// Remove deletes a document from the store.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}
