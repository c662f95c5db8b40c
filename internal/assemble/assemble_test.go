package assemble

import (
	"strings"
	"testing"

	"github.com/bindery/bindery/internal/overlay"
)

var meta = Metadata{Title: "My Book", Author: "Someone"}

func TestBuild_NoMarks(t *testing.T) {
	pages := []string{"page one text", "page two text", "page three text"}

	book := Build(pages, nil, meta)

	if len(book.Chapters) != 4 {
		t.Fatalf("expected cover + 3 chapters, got %d", len(book.Chapters))
	}
	if book.NumberChaptersInTOC {
		t.Error("numbering should be off without chapter marks")
	}

	cover := book.Chapters[0]
	if !cover.ExcludeFromTOC || !cover.BeforeTOC {
		t.Errorf("cover flags wrong: %+v", cover)
	}
	if !strings.Contains(cover.HTML, "My Book") || !strings.Contains(cover.HTML, "Someone") {
		t.Errorf("cover missing metadata: %s", cover.HTML)
	}

	for i, want := range []string{"Page 1", "Page 2", "Page 3"} {
		ch := book.Chapters[i+1]
		if ch.Title != want {
			t.Errorf("chapter %d title = %q, want %q", i, ch.Title, want)
		}
		if ch.ExcludeFromTOC {
			t.Errorf("page chapter %d should be in the TOC", i)
		}
	}
}

func TestBuild_SingleMark(t *testing.T) {
	pages := []string{"front matter", "intro starts", "intro continues"}
	marks := []overlay.ChapterMark{{ID: "m1", PageIndex: 1, Title: "Intro"}}

	book := Build(pages, marks, meta)

	if len(book.Chapters) != 3 {
		t.Fatalf("expected cover + preface + intro, got %d", len(book.Chapters))
	}
	if !book.NumberChaptersInTOC {
		t.Error("numbering should be on with chapter marks")
	}

	preface := book.Chapters[1]
	if preface.Title != "Preface" {
		t.Errorf("expected Preface, got %q", preface.Title)
	}
	if !strings.Contains(preface.HTML, "front matter") || strings.Contains(preface.HTML, "intro") {
		t.Errorf("preface holds wrong pages: %s", preface.HTML)
	}

	intro := book.Chapters[2]
	if intro.Title != "Intro" {
		t.Errorf("expected Intro, got %q", intro.Title)
	}
	if !strings.Contains(intro.HTML, "intro starts") || !strings.Contains(intro.HTML, "intro continues") {
		t.Errorf("intro missing pages: %s", intro.HTML)
	}
}

func TestBuild_MarkAtPageZero(t *testing.T) {
	pages := []string{"a", "b"}
	marks := []overlay.ChapterMark{{ID: "m1", PageIndex: 0, Title: "Everything"}}

	book := Build(pages, marks, meta)

	// No preface when the first mark is on page 0.
	if len(book.Chapters) != 2 {
		t.Fatalf("expected cover + 1 chapter, got %d", len(book.Chapters))
	}
	if book.Chapters[1].Title != "Everything" {
		t.Errorf("unexpected title %q", book.Chapters[1].Title)
	}
}

func TestBuild_UntitledMarkFallback(t *testing.T) {
	pages := []string{"a", "b", "c"}
	marks := []overlay.ChapterMark{
		{ID: "m1", PageIndex: 0, Title: "Named"},
		{ID: "m2", PageIndex: 1, Title: "  "},
		{ID: "m3", PageIndex: 2, Title: ""},
	}

	book := Build(pages, marks, meta)

	titles := []string{book.Chapters[1].Title, book.Chapters[2].Title, book.Chapters[3].Title}
	want := []string{"Named", "Chapter 2", "Chapter 3"}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("chapter %d title = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestPageHTML(t *testing.T) {
	t.Run("escapes markup characters", func(t *testing.T) {
		html := PageHTML("a < b & c > d")
		if !strings.Contains(html, "a &lt; b &amp; c &gt; d") {
			t.Errorf("unescaped output: %s", html)
		}
	})

	t.Run("newlines become paragraphs", func(t *testing.T) {
		html := PageHTML("first line\nsecond line\n\nthird line")
		if strings.Count(html, "<p>") != 3 {
			t.Errorf("expected 3 paragraphs, got: %s", html)
		}
	})

	t.Run("empty page yields no paragraphs", func(t *testing.T) {
		if html := PageHTML("   \n  "); html != "" {
			t.Errorf("expected empty output, got %q", html)
		}
	})
}
