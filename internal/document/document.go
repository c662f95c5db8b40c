// Package document holds the per-document page state shared between the
// ingest flow, the transcription driver, and the export path.
// This package has no dependencies on other bindery packages to avoid import cycles.
package document

import "time"

// Mode indicates how a document's page text was sourced.
type Mode string

const (
	// ModeText means usable text was extracted directly from the PDF.
	ModeText Mode = "text"
	// ModeImage means pages are transcribed from rendered images by a vision model.
	ModeImage Mode = "image"
)

// Provenance is the origin/status tag of a page's text.
type Provenance string

const (
	// ProvenanceExtracted means the text came straight from the PDF text layer.
	ProvenanceExtracted Provenance = "extracted"
	// ProvenanceVLMPending means the page is waiting for vision-model transcription.
	ProvenanceVLMPending Provenance = "vlm-pending"
	// ProvenanceVLMFilled means the vision model produced the text.
	ProvenanceVLMFilled Provenance = "vlm-filled"
	// ProvenanceVLMError means transcription failed for the page.
	ProvenanceVLMError Provenance = "vlm-error"
)

// PageSlot is the authoritative per-page text record, independent of any
// user edit overlay.
type PageSlot struct {
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
}

// Document is the immutable identity of an ingested PDF.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	PDFPath   string    `json:"pdf_path"`
	PageCount int       `json:"page_count"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingSlots returns a slice of n empty slots awaiting transcription.
func PendingSlots(n int) []PageSlot {
	slots := make([]PageSlot, n)
	for i := range slots {
		slots[i] = PageSlot{Provenance: ProvenanceVLMPending}
	}
	return slots
}

// ExtractedSlots wraps per-page extracted text in populated slots.
func ExtractedSlots(texts []string) []PageSlot {
	slots := make([]PageSlot, len(texts))
	for i, text := range texts {
		slots[i] = PageSlot{Text: text, Provenance: ProvenanceExtracted}
	}
	return slots
}
