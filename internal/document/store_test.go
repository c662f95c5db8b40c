package document

import (
	"testing"
	"time"
)

func testDoc(id string, pages int) (Document, []PageSlot) {
	return Document{
		ID:        id,
		Title:     "Test Book",
		PageCount: pages,
		Mode:      ModeImage,
		CreatedAt: time.Now(),
	}, PendingSlots(pages)
}

func TestStore_AddGet(t *testing.T) {
	s := NewStore()
	doc, pages := testDoc("doc-1", 3)
	s.Add(doc, pages)

	got, ok := s.Get("doc-1")
	if !ok {
		t.Fatal("expected document to exist")
	}
	if got.Title != "Test Book" {
		t.Errorf("expected title Test Book, got %s", got.Title)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected missing document lookup to fail")
	}
}

func TestStore_SetPage(t *testing.T) {
	t.Run("updates one slot", func(t *testing.T) {
		s := NewStore()
		doc, pages := testDoc("doc-1", 3)
		s.Add(doc, pages)

		err := s.SetPage("doc-1", 1, PageSlot{Text: "hello", Provenance: ProvenanceVLMFilled})
		if err != nil {
			t.Fatalf("SetPage() error = %v", err)
		}

		got, _ := s.Pages("doc-1")
		if got[1].Text != "hello" || got[1].Provenance != ProvenanceVLMFilled {
			t.Errorf("unexpected slot: %+v", got[1])
		}
		if got[0].Provenance != ProvenanceVLMPending {
			t.Errorf("neighbor slot mutated: %+v", got[0])
		}
	})

	t.Run("snapshot unaffected by later writes", func(t *testing.T) {
		s := NewStore()
		doc, pages := testDoc("doc-1", 2)
		s.Add(doc, pages)

		before, _ := s.Pages("doc-1")
		if err := s.SetPage("doc-1", 0, PageSlot{Text: "new", Provenance: ProvenanceVLMFilled}); err != nil {
			t.Fatalf("SetPage() error = %v", err)
		}

		if before[0].Text != "" {
			t.Error("earlier snapshot was mutated by SetPage")
		}
	})

	t.Run("rejects out of range index", func(t *testing.T) {
		s := NewStore()
		doc, pages := testDoc("doc-1", 2)
		s.Add(doc, pages)

		if err := s.SetPage("doc-1", 5, PageSlot{}); err == nil {
			t.Error("expected error for out-of-range index")
		}
	})
}

func TestStore_LastCompleted(t *testing.T) {
	s := NewStore()
	doc, pages := testDoc("doc-1", 5)
	s.Add(doc, pages)

	if _, ok := s.LastCompleted("doc-1"); ok {
		t.Error("expected no completed pages after Add")
	}

	s.SetLastCompleted("doc-1", 0)
	s.SetLastCompleted("doc-1", 2)
	// Stale write must not move the marker backwards.
	s.SetLastCompleted("doc-1", 1)

	idx, ok := s.LastCompleted("doc-1")
	if !ok || idx != 2 {
		t.Errorf("expected lastCompleted=2, got %d (ok=%v)", idx, ok)
	}
}

func TestStore_ResetPages(t *testing.T) {
	s := NewStore()
	doc, pages := testDoc("doc-1", 3)
	s.Add(doc, pages)

	s.SetPage("doc-1", 0, PageSlot{Text: "filled", Provenance: ProvenanceVLMFilled})
	s.SetLastCompleted("doc-1", 0)

	if err := s.ResetPages("doc-1"); err != nil {
		t.Fatalf("ResetPages() error = %v", err)
	}

	got, _ := s.Pages("doc-1")
	for i, p := range got {
		if p.Text != "" || p.Provenance != ProvenanceVLMPending {
			t.Errorf("page %d not reset: %+v", i, p)
		}
	}
	if _, ok := s.LastCompleted("doc-1"); ok {
		t.Error("expected lastCompleted cleared after reset")
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	doc, pages := testDoc("doc-1", 1)
	s.Add(doc, pages)

	s.Remove("doc-1")
	if _, ok := s.Get("doc-1"); ok {
		t.Error("expected document removed")
	}
}

func TestStore_List(t *testing.T) {
	s := NewStore()
	older := Document{ID: "a", CreatedAt: time.Now().Add(-time.Hour)}
	newer := Document{ID: "b", CreatedAt: time.Now()}
	s.Add(newer, nil)
	s.Add(older, nil)

	docs := s.List()
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("expected creation order [a b], got %v", docs)
	}
}
