package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/overlay"
	"github.com/bindery/bindery/internal/svcctx"
)

// PageView is one page of the display sequence.
type PageView struct {
	Index      int                 `json:"index"`
	Text       string              `json:"text"`
	Provenance document.Provenance `json:"provenance,omitempty"`
}

// PagesResponse is the full display sequence for a document.
type PagesResponse struct {
	DocumentID string                `json:"document_id"`
	HasOverlay bool                  `json:"has_overlay"`
	Pages      []PageView            `json:"pages"`
	Chapters   []overlay.ChapterMark `json:"chapters"`
}

// pageServices resolves the stores both page endpoints need, or writes an
// error response and returns false.
func pageServices(w http.ResponseWriter, r *http.Request) (*svcctx.Services, []string, bool) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil || svcs.Overlays == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return nil, nil, false
	}

	originals, ok := svcs.Documents.PageTexts(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, nil, false
	}
	return svcs, originals, true
}

// ListPagesEndpoint handles GET /api/documents/{id}/pages.
type ListPagesEndpoint struct{}

func (e *ListPagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/pages", e.handler
}

// handler godoc
//
//	@Summary	List the display pages of a document
//	@Description	Returns the edit overlay when one exists, otherwise the original extraction
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	PagesResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/pages [get]
func (e *ListPagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs, originals, ok := pageServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	resp := PagesResponse{
		DocumentID: id,
		HasOverlay: svcs.Overlays.HasOverlay(id),
		Chapters:   svcs.Overlays.Marks(id),
	}

	slots, _ := svcs.Documents.Pages(id)
	for i, text := range svcs.Overlays.Pages(id, originals) {
		pv := PageView{Index: i, Text: text}
		// Provenance only lines up with the authoritative slots while the
		// document is unedited; splits change the page numbering.
		if !resp.HasOverlay && i < len(slots) {
			pv.Provenance = slots[i].Provenance
		}
		resp.Pages = append(resp.Pages, pv)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <id>",
		Short: "List a document's pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PagesResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/pages", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetPageTextRequest is the body for a page edit.
type SetPageTextRequest struct {
	Text string `json:"text"`
}

// SetPageTextEndpoint handles PUT /api/documents/{id}/pages/{index}.
type SetPageTextEndpoint struct{}

func (e *SetPageTextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/documents/{id}/pages/{index}", e.handler
}

// handler godoc
//
//	@Summary	Edit one page's text
//	@Description	The first edit seeds the overlay; the original stays untouched for reset
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string				true	"Document ID"
//	@Param		index	path	int					true	"Page index (0-based)"
//	@Param		body	body	SetPageTextRequest	true	"New page text"
//	@Success	200	{object}	PagesResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/pages/{index} [put]
func (e *SetPageTextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs, originals, ok := pageServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page index")
		return
	}

	var req SetPageTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := svcs.Overlays.SetPageText(id, index, req.Text, originals); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e2 := &ListPagesEndpoint{}
	e2.handler(w, r)
}

func (e *SetPageTextEndpoint) Command(getServerURL func() string) *cobra.Command {
	var textFile string
	cmd := &cobra.Command{
		Use:   "set-page <id> <index> [text]",
		Short: "Replace one page's text",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case textFile != "":
				data, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(data)
			case len(args) == 3:
				text = args[2]
			default:
				return errors.New("provide the text as an argument or via --file")
			}

			client := api.NewClient(getServerURL())
			var resp PagesResponse
			path := "/api/documents/" + args[0] + "/pages/" + args[1]
			if err := client.Put(cmd.Context(), path, SetPageTextRequest{Text: text}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&textFile, "file", "", "Read the new page text from a file")
	return cmd
}

// SplitPageRequest is the body for a page split.
type SplitPageRequest struct {
	Offset int `json:"offset"`
}

// SplitPageEndpoint handles POST /api/documents/{id}/pages/{index}/split.
type SplitPageEndpoint struct{}

func (e *SplitPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/pages/{index}/split", e.handler
}

// handler godoc
//
//	@Summary	Split a page in two at a character offset
//	@Description	The offset must fall strictly inside the page text; chapter marks after the split shift down one page
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string				true	"Document ID"
//	@Param		index	path	int					true	"Page index (0-based)"
//	@Param		body	body	SplitPageRequest	true	"Split offset"
//	@Success	200	{object}	PagesResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/pages/{index}/split [post]
func (e *SplitPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs, originals, ok := pageServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page index")
		return
	}

	var req SplitPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := svcs.Overlays.SplitPage(id, index, req.Offset, originals); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e2 := &ListPagesEndpoint{}
	e2.handler(w, r)
}

func (e *SplitPageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "split <id> <index> <offset>",
		Short: "Split a page at a character offset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid offset %q: %w", args[2], err)
			}
			client := api.NewClient(getServerURL())
			var resp PagesResponse
			path := "/api/documents/" + args[0] + "/pages/" + args[1] + "/split"
			if err := client.Post(cmd.Context(), path, SplitPageRequest{Offset: offset}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ResetOverlayEndpoint handles POST /api/documents/{id}/overlay/reset.
type ResetOverlayEndpoint struct{}

func (e *ResetOverlayEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/overlay/reset", e.handler
}

// handler godoc
//
//	@Summary	Discard all edits and splits
//	@Description	Drops the document's edit overlay; pages fall back to the original extraction
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	PagesResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/overlay/reset [post]
func (e *ResetOverlayEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs, _, ok := pageServices(w, r)
	if !ok {
		return
	}

	svcs.Overlays.ResetToOriginal(r.PathValue("id"))

	e2 := &ListPagesEndpoint{}
	e2.handler(w, r)
}

func (e *ResetOverlayEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-overlay <id>",
		Short: "Discard all page edits and splits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PagesResponse
			path := "/api/documents/" + args[0] + "/overlay/reset"
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
