package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/overlay"
)

// ChaptersResponse lists a document's chapter marks in page order.
type ChaptersResponse struct {
	DocumentID string                `json:"document_id"`
	Chapters   []overlay.ChapterMark `json:"chapters"`
}

// ListChaptersEndpoint handles GET /api/documents/{id}/chapters.
type ListChaptersEndpoint struct{}

func (e *ListChaptersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/chapters", e.handler
}

// handler godoc
//
//	@Summary	List chapter marks
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ChaptersResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/chapters [get]
func (e *ListChaptersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs, _, ok := pageServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	writeJSON(w, http.StatusOK, ChaptersResponse{
		DocumentID: id,
		Chapters:   svcs.Overlays.Marks(id),
	})
}

func (e *ListChaptersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <id>",
		Short: "List a document's chapter marks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ChaptersResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/chapters", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetChapterRequest is the body for setting or clearing a chapter mark.
// A blank title clears any mark at the page.
type SetChapterRequest struct {
	Title string `json:"title"`
}

// SetChapterEndpoint handles PUT /api/documents/{id}/pages/{index}/chapter.
type SetChapterEndpoint struct{}

func (e *SetChapterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/documents/{id}/pages/{index}/chapter", e.handler
}

// handler godoc
//
//	@Summary	Set or clear a chapter mark on a page
//	@Description	A non-blank title marks the page as a chapter start (replacing any existing mark there); a blank title clears it
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string				true	"Document ID"
//	@Param		index	path	int					true	"Page index (0-based)"
//	@Param		body	body	SetChapterRequest	true	"Chapter title, blank to clear"
//	@Success	200	{object}	ChaptersResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/pages/{index}/chapter [put]
func (e *SetChapterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	pageCount := len(svcs.Overlays.Pages(id, originals))
	if index < 0 || index >= pageCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("page index %d out of range [0,%d)", index, pageCount))
		return
	}

	var req SetChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	svcs.Overlays.SetOrClearChapter(id, index, req.Title)

	writeJSON(w, http.StatusOK, ChaptersResponse{
		DocumentID: id,
		Chapters:   svcs.Overlays.Marks(id),
	})
}

func (e *SetChapterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-chapter <id> <index> [title]",
		Short: "Mark a page as a chapter start (omit title to clear)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 3 {
				title = strings.TrimSpace(args[2])
			}
			client := api.NewClient(getServerURL())
			var resp ChaptersResponse
			path := "/api/documents/" + args[0] + "/pages/" + args[1] + "/chapter"
			if err := client.Put(cmd.Context(), path, SetChapterRequest{Title: title}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
