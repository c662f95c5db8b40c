// Package pdf wraps the PDF collaborators: page counting, text-layer
// extraction, and page rasterization.
package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	rpdf "rsc.io/pdf"
)

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// ExtractPageTexts reads the text layer of every page.
// Pages without a text layer come back as empty strings. An error means the
// document itself could not be parsed, not that text was merely absent.
func ExtractPageTexts(path string) (texts []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	// rsc.io/pdf panics on malformed content streams; treat that as a
	// parse failure for the whole document.
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := rpdf.NewReader(f, fileSize(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	n := reader.NumPage()
	texts = make([]string, n)
	for i := 1; i <= n; i++ {
		texts[i-1] = pageText(reader.Page(i))
	}
	return texts, nil
}

func fileSize(f *os.File) int64 {
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// pageText flattens a page's positioned text runs into a single string.
func pageText(p rpdf.Page) string {
	if p.V.IsNull() {
		return ""
	}

	content := p.Content()
	var sb strings.Builder
	var lastY float64
	for i, t := range content.Text {
		if i > 0 {
			if t.Y != lastY {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(t.S)
		lastY = t.Y
	}
	return sb.String()
}
