// Package overlay tracks user edits, page splits, and chapter marks as an
// overlay on top of the immutable original extraction. The original page
// slots are retained underneath for "reset to original".
package overlay

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidSplit is returned when a split offset falls on a page boundary.
var ErrInvalidSplit = errors.New("split point must be inside the page text")

// Store holds per-document edit overlays and chapter marks.
// An absent overlay means "display the original"; once present, the overlay
// is the sole source of truth for display and export.
type Store struct {
	mu       sync.RWMutex
	overlays map[string][]string
	marks    map[string][]ChapterMark
}

// NewStore creates an empty overlay store.
func NewStore() *Store {
	return &Store{
		overlays: make(map[string][]string),
		marks:    make(map[string][]ChapterMark),
	}
}

// HasOverlay reports whether the document has been edited or split.
func (s *Store) HasOverlay(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overlays[docID]
	return ok
}

// Pages returns the current display sequence: the overlay if present,
// otherwise a copy of the original.
func (s *Store) Pages(docID string, original []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ov, ok := s.overlays[docID]; ok {
		return append([]string(nil), ov...)
	}
	return append([]string(nil), original...)
}

// SetPageText records an edit to one page. The first edit seeds the overlay
// from the current display sequence; after that the original is untouched.
func (s *Store) SetPageText(docID string, index int, text string, original []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := s.displayLocked(docID, original)
	if index < 0 || index >= len(ov) {
		return fmt.Errorf("page index %d out of range [0,%d)", index, len(ov))
	}

	updated := append([]string(nil), ov...)
	updated[index] = text
	s.overlays[docID] = updated
	return nil
}

// SplitPage splits the page at index into two pages at the cursor offset.
// The offset must fall strictly inside the text; otherwise the split is
// rejected and nothing changes. Whitespace around the cut is trimmed.
// Chapter marks after the split point shift down by one page.
func (s *Store) SplitPage(docID string, index, offset int, original []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := s.displayLocked(docID, original)
	if index < 0 || index >= len(ov) {
		return fmt.Errorf("page index %d out of range [0,%d)", index, len(ov))
	}

	text := ov[index]
	if offset <= 0 || offset >= len(text) {
		return fmt.Errorf("%w: offset %d in page of length %d", ErrInvalidSplit, offset, len(text))
	}

	left := strings.TrimRight(text[:offset], " \t\n\r")
	right := strings.TrimLeft(text[offset:], " \t\n\r")

	updated := make([]string, 0, len(ov)+1)
	updated = append(updated, ov[:index]...)
	updated = append(updated, left, right)
	updated = append(updated, ov[index+1:]...)
	s.overlays[docID] = updated

	s.shiftMarksLocked(docID, index)
	return nil
}

// ResetToOriginal discards the document's overlay. Reads fall back to the
// original page sequence. Other documents are unaffected.
func (s *Store) ResetToOriginal(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlays, docID)
}

// Remove drops all overlay state and marks for a deleted document.
func (s *Store) Remove(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlays, docID)
	delete(s.marks, docID)
}

// displayLocked returns the current display sequence without seeding, so a
// rejected operation leaves no overlay behind. Caller holds s.mu.
func (s *Store) displayLocked(docID string, original []string) []string {
	if ov, ok := s.overlays[docID]; ok {
		return ov
	}
	return original
}
