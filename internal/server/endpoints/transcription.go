package endpoints

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/svcctx"
	"github.com/bindery/bindery/internal/transcribe"
)

// TranscriptionResponse reports the transcription state of a document.
type TranscriptionResponse struct {
	DocumentID string            `json:"document_id"`
	Status     transcribe.Status `json:"status"`
	Note       string            `json:"note,omitempty"`
}

// transcriptionServices resolves the manager and the active profile, or
// writes an error response and returns false.
func transcriptionServices(w http.ResponseWriter, r *http.Request) (*transcribe.Manager, profile.Profile, bool) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Transcriber == nil || svcs.Profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return nil, profile.Profile{}, false
	}

	settings, err := svcs.Profiles.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profiles: "+err.Error())
		return nil, profile.Profile{}, false
	}
	active, _ := settings.Active()
	return svcs.Transcriber, active, true
}

func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transcribe.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, transcribe.ErrNoBaseURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// TranscriptionStatusEndpoint handles GET /api/documents/{id}/transcription.
type TranscriptionStatusEndpoint struct{}

func (e *TranscriptionStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/transcription", e.handler
}

// handler godoc
//
//	@Summary	Get transcription status
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	TranscriptionResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/transcription [get]
func (e *TranscriptionStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil || svcs.Transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	id := r.PathValue("id")
	if _, ok := svcs.Documents.Get(id); !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	writeJSON(w, http.StatusOK, TranscriptionResponse{
		DocumentID: id,
		Status:     svcs.Transcriber.Status(id),
	})
}

func (e *TranscriptionStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "transcription <id>",
		Short: "Show transcription progress for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TranscriptionResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/transcription", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// StartTranscriptionEndpoint handles POST /api/documents/{id}/transcription/start.
type StartTranscriptionEndpoint struct{}

func (e *StartTranscriptionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/transcription/start", e.handler
}

// handler godoc
//
//	@Summary	Start transcription from the first page
//	@Description	Supersedes any running transcription for the document. Uses the active provider profile.
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	202	{object}	TranscriptionResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/transcription/start [post]
func (e *StartTranscriptionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr, active, ok := transcriptionServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	// The run outlives this request.
	if _, err := mgr.Start(context.WithoutCancel(r.Context()), id, active); err != nil {
		writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, TranscriptionResponse{
		DocumentID: id,
		Status:     mgr.Status(id),
	})
}

func (e *StartTranscriptionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return transcriptionActionCommand(getServerURL, "start", "Start transcription from the first page")
}

// ResumeTranscriptionEndpoint handles POST /api/documents/{id}/transcription/resume.
type ResumeTranscriptionEndpoint struct{}

func (e *ResumeTranscriptionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/transcription/resume", e.handler
}

// handler godoc
//
//	@Summary	Resume transcription after the last completed page
//	@Description	No-op when every page has already completed
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	202	{object}	TranscriptionResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/transcription/resume [post]
func (e *ResumeTranscriptionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr, active, ok := transcriptionServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	run, err := mgr.Resume(context.WithoutCancel(r.Context()), id, active)
	if err != nil {
		writeRunError(w, err)
		return
	}

	resp := TranscriptionResponse{
		DocumentID: id,
		Status:     mgr.Status(id),
	}
	if run == nil {
		resp.Note = "all pages already transcribed"
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (e *ResumeTranscriptionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return transcriptionActionCommand(getServerURL, "resume", "Resume transcription after the last completed page")
}

// RescanTranscriptionEndpoint handles POST /api/documents/{id}/transcription/rescan.
type RescanTranscriptionEndpoint struct{}

func (e *RescanTranscriptionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/transcription/rescan", e.handler
}

// handler godoc
//
//	@Summary	Discard all transcribed text and start over
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	202	{object}	TranscriptionResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/transcription/rescan [post]
func (e *RescanTranscriptionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr, active, ok := transcriptionServices(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := mgr.Rescan(context.WithoutCancel(r.Context()), id, active); err != nil {
		writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, TranscriptionResponse{
		DocumentID: id,
		Status:     mgr.Status(id),
	})
}

func (e *RescanTranscriptionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return transcriptionActionCommand(getServerURL, "rescan", "Discard all transcribed text and start over")
}

// CancelTranscriptionEndpoint handles POST /api/documents/{id}/transcription/cancel.
type CancelTranscriptionEndpoint struct{}

func (e *CancelTranscriptionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/transcription/cancel", e.handler
}

// handler godoc
//
//	@Summary	Cancel a running transcription
//	@Description	Completed pages keep their text; the run can be resumed later
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	TranscriptionResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/documents/{id}/transcription/cancel [post]
func (e *CancelTranscriptionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil || svcs.Documents == nil || svcs.Transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	id := r.PathValue("id")
	if _, ok := svcs.Documents.Get(id); !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	svcs.Transcriber.Cancel(id)

	writeJSON(w, http.StatusOK, TranscriptionResponse{
		DocumentID: id,
		Status:     svcs.Transcriber.Status(id),
	})
}

func (e *CancelTranscriptionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return transcriptionActionCommand(getServerURL, "cancel", "Cancel a running transcription")
}

// transcriptionActionCommand builds the shared CLI shape of the POST
// transcription actions.
func transcriptionActionCommand(getServerURL func() string, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TranscriptionResponse
			path := "/api/documents/" + args[0] + "/transcription/" + action
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
