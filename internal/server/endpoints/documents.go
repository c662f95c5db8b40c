package endpoints

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/ingest"
	"github.com/bindery/bindery/internal/svcctx"
	"github.com/bindery/bindery/internal/transcribe"
)

// DocumentSummary is the API representation of a document.
type DocumentSummary struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Author        string            `json:"author,omitempty"`
	PageCount     int               `json:"page_count"`
	Mode          document.Mode     `json:"mode"`
	CreatedAt     time.Time         `json:"created_at"`
	HasOverlay    bool              `json:"has_overlay"`
	Transcription transcribe.Status `json:"transcription"`
}

func summarize(r *http.Request, doc document.Document) DocumentSummary {
	s := DocumentSummary{
		ID:        doc.ID,
		Title:     doc.Title,
		Author:    doc.Author,
		PageCount: doc.PageCount,
		Mode:      doc.Mode,
		CreatedAt: doc.CreatedAt,
	}
	if overlays := svcctx.OverlaysFrom(r.Context()); overlays != nil {
		s.HasOverlay = overlays.HasOverlay(doc.ID)
	}
	if mgr := svcctx.TranscriberFrom(r.Context()); mgr != nil {
		s.Transcription = mgr.Status(doc.ID)
	}
	return s
}

// UploadResponse is returned from a document upload.
type UploadResponse struct {
	Document             DocumentSummary `json:"document"`
	Warning              string          `json:"warning,omitempty"`
	TranscriptionStarted bool            `json:"transcription_started"`
}

// UploadDocumentEndpoint handles POST /api/documents with a multipart PDF upload.
type UploadDocumentEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentEndpoint)(nil)

func (e *UploadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

// handler godoc
//
//	@Summary		Upload a PDF
//	@Description	Upload a PDF, classify its text layer, and start vision transcription when needed
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"PDF file"
//	@Param			title	formData	string	false	"Document title (derived from filename if not provided)"
//	@Param			author	formData	string	false	"Document author"
//	@Success		200	{object}	UploadResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/documents [post]
func (e *UploadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 500 << 20 // 500MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	fh := files[0]
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}

	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil || svcs.Home == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	// Save the upload to a temp file; ingest copies it into the home dir.
	src, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open uploaded file: %v", err))
		return
	}
	defer src.Close()

	tempDir, err := os.MkdirTemp("", "bindery-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	tempPath := filepath.Join(tempDir, filepath.Base(fh.Filename))
	dst, err := os.Create(tempPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create file: %v", err))
		return
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}
	dst.Close()

	result, err := ingest.Ingest(svcs.Documents, svcs.Home, ingest.Request{
		PDFPath: tempPath,
		Title:   r.FormValue("title"),
		Author:  r.FormValue("author"),
		Logger:  svcs.Logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("ingest failed: %v", err))
		return
	}

	resp := UploadResponse{
		Document: summarize(r, result.Document),
		Warning:  result.Warning,
	}

	// Image-flow documents start transcribing immediately when the active
	// profile is usable. The run must outlive this request.
	if result.NeedsTranscription && svcs.Transcriber != nil && svcs.Profiles != nil {
		if settings, err := svcs.Profiles.Load(); err == nil {
			if active, ok := settings.Active(); ok && active.Configured() {
				runCtx := context.WithoutCancel(r.Context())
				if _, err := svcs.Transcriber.Start(runCtx, result.Document.ID, active); err != nil {
					svcs.Logger.Error("failed to start transcription", "error", err, "document_id", result.Document.ID)
				} else {
					resp.TranscriptionStarted = true
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *UploadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "upload <pdf-path>",
		Short: "Upload a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			fields := map[string]string{}
			if title != "" {
				fields["title"] = title
			}
			if author != "" {
				fields["author"] = author
			}
			var resp UploadResponse
			if err := client.UploadFile(cmd.Context(), "/api/documents", "file", args[0], fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().StringVar(&author, "author", "", "Document author")
	return cmd
}

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

// handler godoc
//
//	@Summary	List documents
//	@Tags		documents
//	@Produce	json
//	@Success	200	{array}	DocumentSummary
//	@Router		/api/documents [get]
func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	out := make([]DocumentSummary, 0)
	for _, doc := range docs.List() {
		out = append(out, summarize(r, doc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var docs []DocumentSummary
			if err := client.Get(cmd.Context(), "/api/documents", &docs); err != nil {
				return err
			}
			return api.Output(docs)
		},
	}
}

// GetDocumentEndpoint handles GET /api/documents/{id}.
type GetDocumentEndpoint struct{}

func (e *GetDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}", e.handler
}

// handler godoc
//
//	@Summary	Get document by ID
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	DocumentSummary
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id} [get]
func (e *GetDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	doc, ok := docs.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, summarize(r, doc))
}

func (e *GetDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a document by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc DocumentSummary
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}

// DeleteDocumentEndpoint handles DELETE /api/documents/{id}.
type DeleteDocumentEndpoint struct{}

func (e *DeleteDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/documents/{id}", e.handler
}

// handler godoc
//
//	@Summary	Delete a document
//	@Description	Cancels any transcription run, removes the stored PDF, overlay, and record
//	@Tags		documents
//	@Produce	json
//	@Param		id	path	string	true	"Document ID"
//	@Success	200	{object}	map[string]bool
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id} [delete]
func (e *DeleteDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	id := r.PathValue("id")
	doc, ok := svcs.Documents.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if svcs.Transcriber != nil {
		svcs.Transcriber.Cancel(id)
	}
	if svcs.Overlays != nil {
		svcs.Overlays.Remove(id)
	}
	if doc.PDFPath != "" {
		if err := os.Remove(doc.PDFPath); err != nil && !os.IsNotExist(err) {
			svcs.Logger.Warn("failed to remove stored PDF", "error", err, "path", doc.PDFPath)
		}
	}
	svcs.Documents.Remove(id)

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (e *DeleteDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/documents/"+args[0]); err != nil {
				return err
			}
			cmd.Println("deleted", args[0])
			return nil
		},
	}
}
