// Package ingest turns an uploaded PDF into a stored document, deciding
// between direct text extraction and image-based transcription.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/home"
	"github.com/bindery/bindery/internal/pdf"
)

// PDF collaborators, swapped in tests.
var (
	countPages   = pdf.PageCount
	extractTexts = pdf.ExtractPageTexts
)

// Request contains the parameters for ingesting a PDF.
type Request struct {
	PDFPath string       // Source PDF file path
	Title   string       // Document title (optional, derived from filename if empty)
	Author  string       // Document author (optional)
	Logger  *slog.Logger // Optional logger for progress updates
}

// Result contains the outcome of an ingest operation.
type Result struct {
	Document document.Document

	// NeedsTranscription is true when the document was classified as image
	// flow and a transcription run should start at page 0.
	NeedsTranscription bool

	// Warning carries a user-visible note for degraded ingests, e.g. when
	// page extraction failed and the document was created without pages.
	Warning string
}

// Ingest copies the PDF into the home directory, classifies its text layer,
// and creates the document record with its initial page slots.
//
// If page extraction fails the document is still created with zero pages and
// a warning; image flow is deliberately not forced on a parse failure, since
// that would trigger costly transcription on a document we cannot render
// meaningfully either.
func Ingest(store *document.Store, homeDir *home.Dir, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if req.PDFPath == "" {
		return nil, fmt.Errorf("no PDF path provided")
	}
	if _, err := os.Stat(req.PDFPath); err != nil {
		return nil, fmt.Errorf("PDF not found: %s", req.PDFPath)
	}

	title := req.Title
	if title == "" {
		title = deriveTitle(req.PDFPath)
	}

	docID := uuid.New().String()
	storedPath := homeDir.DocumentPath(docID)
	if err := copyFile(req.PDFPath, storedPath); err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	// Validate up front: a file pdfcpu cannot count pages in is not a PDF
	// we can do anything with, so refuse it rather than create a dead
	// document.
	pageCount, err := countPages(storedPath)
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("not a valid PDF: %w", err)
	}

	doc := document.Document{
		ID:        docID,
		Title:     title,
		Author:    req.Author,
		PDFPath:   storedPath,
		Mode:      document.ModeText,
		CreatedAt: time.Now().UTC(),
	}

	texts, err := extractTexts(storedPath)
	if err != nil {
		// Degraded ingest: keep the document so the user sees it in
		// history, but with zero pages and no transcription run.
		log.Warn("page extraction failed", "doc_id", docID, "err", err)
		store.Add(doc, nil)
		return &Result{
			Document: doc,
			Warning:  "no text extracted",
		}, nil
	}

	// The text extractor can disagree with the validated page count (pages
	// with no content stream); the count wins, missing entries are empty.
	if len(texts) > pageCount {
		texts = texts[:pageCount]
	}
	for len(texts) < pageCount {
		texts = append(texts, "")
	}

	doc.PageCount = pageCount
	doc.Mode = Classify(texts)

	var slots []document.PageSlot
	switch doc.Mode {
	case document.ModeText:
		slots = document.ExtractedSlots(texts)
	case document.ModeImage:
		slots = document.PendingSlots(len(texts))
	}

	store.Add(doc, slots)
	log.Info("document ingested",
		"doc_id", docID, "title", title, "pages", doc.PageCount, "mode", doc.Mode)

	return &Result{
		Document:           doc,
		NeedsTranscription: doc.Mode == document.ModeImage && doc.PageCount > 0,
	}, nil
}

// deriveTitle extracts a human-readable title from a PDF filename.
func deriveTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
