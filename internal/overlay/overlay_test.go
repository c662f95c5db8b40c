package overlay

import (
	"errors"
	"strings"
	"testing"
)

func TestStore_SetPageText(t *testing.T) {
	t.Run("seeds overlay on first edit", func(t *testing.T) {
		s := NewStore()
		original := []string{"one", "two", "three"}

		if s.HasOverlay("doc") {
			t.Fatal("no overlay expected before edits")
		}

		if err := s.SetPageText("doc", 1, "TWO", original); err != nil {
			t.Fatalf("SetPageText() error = %v", err)
		}

		got := s.Pages("doc", original)
		want := []string{"one", "TWO", "three"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("page %d = %q, want %q", i, got[i], want[i])
			}
		}
		if !s.HasOverlay("doc") {
			t.Error("overlay should exist after edit")
		}
	})

	t.Run("later edits do not reseed", func(t *testing.T) {
		s := NewStore()
		original := []string{"a", "b"}

		s.SetPageText("doc", 0, "edited-a", original)
		// Original changing (e.g. late transcription) must not leak into
		// an existing overlay.
		s.SetPageText("doc", 1, "edited-b", []string{"STALE", "STALE"})

		got := s.Pages("doc", original)
		if got[0] != "edited-a" || got[1] != "edited-b" {
			t.Errorf("unexpected pages: %v", got)
		}
	})

	t.Run("out of range index", func(t *testing.T) {
		s := NewStore()
		if err := s.SetPageText("doc", 5, "x", []string{"only"}); err == nil {
			t.Error("expected error for out-of-range index")
		}
	})
}

func TestStore_SplitPage(t *testing.T) {
	t.Run("splits and trims at the cut", func(t *testing.T) {
		s := NewStore()
		original := []string{"first page text", "second"}
		// Split "first page text" between "first" and "page".
		offset := len("first ")

		if err := s.SplitPage("doc", 0, offset, original); err != nil {
			t.Fatalf("SplitPage() error = %v", err)
		}

		got := s.Pages("doc", original)
		if len(got) != 3 {
			t.Fatalf("expected 3 pages after split, got %d", len(got))
		}
		if got[0] != "first" || got[1] != "page text" || got[2] != "second" {
			t.Errorf("unexpected pages: %q", got)
		}
	})

	t.Run("concatenation reconstructs the page", func(t *testing.T) {
		s := NewStore()
		text := "alpha beta gamma"
		original := []string{text}

		for offset := 1; offset < len(text); offset++ {
			s.ResetToOriginal("doc")
			if err := s.SplitPage("doc", 0, offset, original); err != nil {
				t.Fatalf("offset %d: %v", offset, err)
			}
			got := s.Pages("doc", original)
			left, right := got[0], got[1]

			// The two halves must be an exact prefix and suffix of the
			// original, with only whitespace lost at the cut.
			if !strings.HasPrefix(text, left) || !strings.HasSuffix(text, right) {
				t.Fatalf("offset %d: %q + %q does not reconstruct %q", offset, left, right, text)
			}
			middle := text[len(left) : len(text)-len(right)]
			if strings.TrimSpace(middle) != "" {
				t.Errorf("offset %d: non-whitespace lost at the cut: %q", offset, middle)
			}
		}
	})

	t.Run("rejects boundary offsets", func(t *testing.T) {
		original := []string{"sometext"}
		for _, offset := range []int{0, len("sometext"), -1, 100} {
			s := NewStore()
			err := s.SplitPage("doc", 0, offset, original)
			if err == nil {
				t.Errorf("offset %d: expected rejection", offset)
				continue
			}
			if offset == 0 || offset == len("sometext") {
				if !errors.Is(err, ErrInvalidSplit) {
					t.Errorf("offset %d: expected ErrInvalidSplit, got %v", offset, err)
				}
			}
			if s.HasOverlay("doc") {
				t.Errorf("offset %d: rejected split must not mutate state", offset)
			}
		}
	})

	t.Run("shifts chapter marks after the split point", func(t *testing.T) {
		s := NewStore()
		original := []string{"page zero", "page one", "page two"}

		s.SetOrClearChapter("doc", 0, "Start")
		s.SetOrClearChapter("doc", 1, "Middle")
		s.SetOrClearChapter("doc", 2, "End")

		if err := s.SplitPage("doc", 1, len("page "), original); err != nil {
			t.Fatalf("SplitPage() error = %v", err)
		}

		marks := s.Marks("doc")
		want := map[string]int{"Start": 0, "Middle": 1, "End": 3}
		for _, m := range marks {
			if m.PageIndex != want[m.Title] {
				t.Errorf("mark %s at index %d, want %d", m.Title, m.PageIndex, want[m.Title])
			}
		}
	})
}

func TestStore_ResetToOriginal(t *testing.T) {
	s := NewStore()
	originalA := []string{"a1", "a2"}
	originalB := []string{"b1"}

	s.SetPageText("doc-a", 0, "edited", originalA)
	s.SplitPage("doc-a", 1, 1, originalA)
	s.SetPageText("doc-b", 0, "b-edited", originalB)

	s.ResetToOriginal("doc-a")

	got := s.Pages("doc-a", originalA)
	if len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Errorf("expected original pages restored, got %v", got)
	}
	if s.HasOverlay("doc-a") {
		t.Error("overlay should be gone after reset")
	}

	// Other documents keep their overlays.
	gotB := s.Pages("doc-b", originalB)
	if gotB[0] != "b-edited" {
		t.Error("reset leaked into another document")
	}
}

func TestStore_SetOrClearChapter(t *testing.T) {
	t.Run("creates and renames", func(t *testing.T) {
		s := NewStore()

		mark, ok := s.SetOrClearChapter("doc", 2, "Chapter One")
		if !ok || mark.Title != "Chapter One" || mark.ID == "" {
			t.Fatalf("unexpected mark: %+v", mark)
		}

		renamed, ok := s.SetOrClearChapter("doc", 2, "  Renamed  ")
		if !ok || renamed.Title != "Renamed" {
			t.Fatalf("unexpected rename: %+v", renamed)
		}
		if renamed.ID != mark.ID {
			t.Error("rename should keep the mark id")
		}
		if len(s.Marks("doc")) != 1 {
			t.Error("rename must not duplicate the mark")
		}
	})

	t.Run("empty title removes", func(t *testing.T) {
		s := NewStore()
		s.SetOrClearChapter("doc", 1, "Keep")
		s.SetOrClearChapter("doc", 3, "Drop")

		if _, ok := s.SetOrClearChapter("doc", 3, "   "); ok {
			t.Error("whitespace title should remove the mark")
		}

		marks := s.Marks("doc")
		if len(marks) != 1 || marks[0].Title != "Keep" {
			t.Errorf("unexpected marks: %+v", marks)
		}
	})

	t.Run("kept sorted by page index", func(t *testing.T) {
		s := NewStore()
		s.SetOrClearChapter("doc", 9, "Last")
		s.SetOrClearChapter("doc", 0, "First")
		s.SetOrClearChapter("doc", 4, "Middle")

		marks := s.Marks("doc")
		for i := 1; i < len(marks); i++ {
			if marks[i-1].PageIndex > marks[i].PageIndex {
				t.Errorf("marks not sorted: %+v", marks)
			}
		}
	})
}
