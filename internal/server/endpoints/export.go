package endpoints

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/assemble"
	"github.com/bindery/bindery/internal/epub"
	"github.com/bindery/bindery/internal/svcctx"
)

// ExportResponse reports where the generated ePub landed.
type ExportResponse struct {
	DocumentID string `json:"document_id"`
	Path       string `json:"path"`
	Chapters   int    `json:"chapters"`
}

// ExportEndpoint handles POST /api/documents/{id}/export. It assembles the
// current display sequence and chapter marks into an ePub in the exports
// directory. Export works at any time, even mid-transcription.
type ExportEndpoint struct{}

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/export", e.handler
}

// handler godoc
//
//	@Summary	Export a document as ePub
//	@Description	Builds the book from the edited pages and chapter marks and writes it to the exports directory
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ExportResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/documents/{id}/export [post]
func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil || svcs.Overlays == nil || svcs.Home == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	id := r.PathValue("id")
	doc, ok := svcs.Documents.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	originals, _ := svcs.Documents.PageTexts(id)
	pages := svcs.Overlays.Pages(id, originals)
	marks := svcs.Overlays.Marks(id)

	book := assemble.Build(pages, marks, assemble.Metadata{
		Title:  doc.Title,
		Author: doc.Author,
	})

	outPath := filepath.Join(svcs.Home.ExportsDir(), epub.Filename(doc.Title))
	if err := epub.NewBuilder(book).Build(outPath); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}

	svcs.Logger.Info("exported epub", "document_id", id, "path", outPath)

	writeJSON(w, http.StatusOK, ExportResponse{
		DocumentID: id,
		Path:       outPath,
		Chapters:   len(book.Chapters),
	})
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <id>",
		Short: "Export a document as ePub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExportResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/export", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
