package overlay

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ChapterMark is a user-placed boundary: a new chapter begins at PageIndex
// of the current display sequence.
type ChapterMark struct {
	ID        string `json:"id"`
	PageIndex int    `json:"page_index"`
	Title     string `json:"title"`
}

// SetOrClearChapter creates, renames, or removes the mark at a page index.
// A non-empty trimmed title creates or renames; an empty title removes.
// The returned bool is false when the call removed (or found nothing at)
// the index.
func (s *Store) SetOrClearChapter(docID string, pageIndex int, title string) (ChapterMark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	marks := s.marks[docID]

	if title == "" {
		filtered := marks[:0]
		for _, m := range marks {
			if m.PageIndex != pageIndex {
				filtered = append(filtered, m)
			}
		}
		s.marks[docID] = filtered
		return ChapterMark{}, false
	}

	for i, m := range marks {
		if m.PageIndex == pageIndex {
			marks[i].Title = title
			return marks[i], true
		}
	}

	mark := ChapterMark{
		ID:        uuid.New().String(),
		PageIndex: pageIndex,
		Title:     title,
	}
	marks = append(marks, mark)
	sort.Slice(marks, func(i, j int) bool { return marks[i].PageIndex < marks[j].PageIndex })
	s.marks[docID] = marks
	return mark, true
}

// Marks returns the document's chapter marks sorted by page index.
func (s *Store) Marks(docID string) []ChapterMark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ChapterMark(nil), s.marks[docID]...)
}

// shiftMarksLocked moves every mark past a split point down one page.
// Caller holds s.mu.
func (s *Store) shiftMarksLocked(docID string, splitIndex int) {
	marks := s.marks[docID]
	for i := range marks {
		if marks[i].PageIndex > splitIndex {
			marks[i].PageIndex++
		}
	}
}
