package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/bindery/bindery/internal/document"
)

// TextThreshold is the minimum trimmed text length on any one page for a
// document to count as having a usable text layer. Scanned PDFs often carry
// a few stray characters of OCR junk; below this the text layer is noise.
const TextThreshold = 20

// Classify decides whether a document's extracted text layer is usable.
// A single page with more than TextThreshold trimmed characters is enough
// to choose direct extraction; otherwise every page goes through
// vision-model transcription.
func Classify(pageTexts []string) document.Mode {
	for _, text := range pageTexts {
		// Characters, not bytes: a handful of CJK runes is still junk.
		if utf8.RuneCountInString(strings.TrimSpace(text)) > TextThreshold {
			return document.ModeText
		}
	}
	return document.ModeImage
}
