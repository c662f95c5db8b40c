// Package assemble converts the current page sequence, chapter marks, and
// book metadata into the ordered chapter manifest handed to the EPUB
// serializer.
package assemble

import (
	"fmt"
	"strings"

	"github.com/bindery/bindery/internal/overlay"
)

// Metadata is the book-level export metadata.
type Metadata struct {
	Title  string
	Author string
}

// Chapter is one titled HTML content block of the manifest.
type Chapter struct {
	Title string
	HTML  string

	// BeforeTOC records that the block belongs ahead of the table of
	// contents. The serializer emits chapters in manifest order and ships
	// no inline TOC page, so spine order alone carries the placement; the
	// flag is metadata for renderers that synthesize a TOC page.
	BeforeTOC bool
	// ExcludeFromTOC keeps the block out of the table of contents.
	ExcludeFromTOC bool
}

// Book is the complete export manifest.
type Book struct {
	Title  string
	Author string

	// NumberChaptersInTOC enables chapter numbering in the table of
	// contents. On only when the user placed explicit chapter marks.
	NumberChaptersInTOC bool

	Chapters []Chapter
}

// Build assembles the manifest. pages is the current display sequence
// (overlay-aware); marks must be sorted by page index, as the overlay
// store keeps them. Build cannot fail on valid input.
func Build(pages []string, marks []overlay.ChapterMark, meta Metadata) Book {
	book := Book{
		Title:               meta.Title,
		Author:              meta.Author,
		NumberChaptersInTOC: len(marks) > 0,
	}

	// Cover first, never in the table of contents.
	book.Chapters = append(book.Chapters, Chapter{
		Title:          meta.Title,
		HTML:           coverHTML(meta),
		BeforeTOC:      true,
		ExcludeFromTOC: true,
	})

	if len(marks) == 0 {
		for i, page := range pages {
			book.Chapters = append(book.Chapters, Chapter{
				Title: fmt.Sprintf("Page %d", i+1),
				HTML:  PageHTML(page),
			})
		}
		return book
	}

	// Pages before the first mark become a preface.
	if marks[0].PageIndex > 0 {
		end := min(marks[0].PageIndex, len(pages))
		book.Chapters = append(book.Chapters, Chapter{
			Title: "Preface",
			HTML:  pagesHTML(pages[:end]),
		})
	}

	for i, mark := range marks {
		start := mark.PageIndex
		if start >= len(pages) {
			break
		}
		end := len(pages)
		if i+1 < len(marks) && marks[i+1].PageIndex < end {
			end = marks[i+1].PageIndex
		}

		title := strings.TrimSpace(mark.Title)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		book.Chapters = append(book.Chapters, Chapter{
			Title: title,
			HTML:  pagesHTML(pages[start:end]),
		})
	}

	return book
}

// PageHTML escapes one page's text and converts newlines to paragraphs.
func PageHTML(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(escapeHTML(line))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

func pagesHTML(pages []string) string {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(PageHTML(page))
	}
	return sb.String()
}

func coverHTML(meta Metadata) string {
	var sb strings.Builder
	sb.WriteString(`<div class="cover">` + "\n")
	sb.WriteString("<h1>" + escapeHTML(meta.Title) + "</h1>\n")
	if meta.Author != "" {
		sb.WriteString("<p class=\"author\">" + escapeHTML(meta.Author) + "</p>\n")
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// escapeHTML escapes the characters that break XHTML content.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
