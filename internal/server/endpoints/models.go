package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/config"
	"github.com/bindery/bindery/internal/providers"
	"github.com/bindery/bindery/internal/svcctx"
)

// ModelsResponse lists the model identifiers a provider endpoint advertises.
type ModelsResponse struct {
	ProfileID string   `json:"profile_id"`
	Models    []string `json:"models"`
}

// ListModelsEndpoint handles GET /api/profiles/{id}/models. It relays the
// provider's model listing so the UI can offer a model picker.
type ListModelsEndpoint struct{}

func (e *ListModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/profiles/{id}/models", e.handler
}

// handler godoc
//
//	@Summary	List models advertised by a profile's provider
//	@Tags		profiles
//	@Produce	json
//	@Param		id	path		string	true	"Profile ID"
//	@Success	200	{object}	ModelsResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse
//	@Router		/api/profiles/{id}/models [get]
func (e *ListModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	profiles := svcctx.ProfilesFrom(r.Context())
	if profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "profile store not initialized")
		return
	}

	settings, err := profiles.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := r.PathValue("id")
	prof, ok := settings.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if !prof.Configured() {
		writeError(w, http.StatusBadRequest, "profile has no base URL configured")
		return
	}

	client := providers.NewClient(providers.ClientConfig{
		BaseURL: prof.BaseURL,
		APIKey:  config.ResolveEnvVars(prof.APIKey),
		Model:   prof.Model,
		Logger:  svcctx.LoggerFrom(r.Context()),
	})

	models, err := client.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ModelsResponse{ProfileID: id, Models: models})
}

func (e *ListModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "models <profile-id>",
		Short: "List models advertised by a profile's provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ModelsResponse
			if err := client.Get(cmd.Context(), "/api/profiles/"+args[0]+"/models", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
