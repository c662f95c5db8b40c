package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/svcctx"
)

// GetProfilesEndpoint handles GET /api/profiles.
type GetProfilesEndpoint struct{}

func (e *GetProfilesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/profiles", e.handler
}

// handler godoc
//
//	@Summary	Get provider profile settings
//	@Tags		profiles
//	@Produce	json
//	@Success	200	{object}	profile.Settings
//	@Router		/api/profiles [get]
func (e *GetProfilesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, settings)
}

func (e *GetProfilesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show provider profile settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var settings profile.Settings
			if err := client.Get(cmd.Context(), "/api/profiles", &settings); err != nil {
				return err
			}
			return api.Output(settings)
		},
	}
}

// UpdateProfilesEndpoint handles PUT /api/profiles, replacing the full
// settings blob. The blob is schema-validated before it is persisted.
type UpdateProfilesEndpoint struct{}

func (e *UpdateProfilesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/profiles", e.handler
}

// handler godoc
//
//	@Summary	Replace provider profile settings
//	@Description	The full settings blob is validated and persisted; in-flight transcription runs keep their snapshot
//	@Tags		profiles
//	@Accept		json
//	@Produce	json
//	@Param		body	body		profile.Settings	true	"Profile settings"
//	@Success	200	{object}	profile.Settings
//	@Failure	400	{object}	ErrorResponse
//	@Router		/api/profiles [put]
func (e *UpdateProfilesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	profiles := svcctx.ProfilesFrom(r.Context())
	if profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "profile store not initialized")
		return
	}

	var settings profile.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := profiles.Save(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (e *UpdateProfilesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fromFile string
	cmd := &cobra.Command{
		Use:   "update --file <settings.json>",
		Short: "Replace provider profile settings from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromFile == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(fromFile)
			if err != nil {
				return err
			}
			var settings profile.Settings
			if err := json.Unmarshal(data, &settings); err != nil {
				return fmt.Errorf("invalid settings file: %w", err)
			}

			client := api.NewClient(getServerURL())
			var saved profile.Settings
			if err := client.Put(cmd.Context(), "/api/profiles", settings, &saved); err != nil {
				return err
			}
			return api.Output(saved)
		},
	}
	cmd.Flags().StringVar(&fromFile, "file", "", "Path to the settings JSON file")
	return cmd
}

// ActivateProfileEndpoint handles POST /api/profiles/{id}/activate.
type ActivateProfileEndpoint struct{}

func (e *ActivateProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/profiles/{id}/activate", e.handler
}

// handler godoc
//
//	@Summary	Activate a provider profile
//	@Tags		profiles
//	@Produce	json
//	@Param		id	path		string	true	"Profile ID"
//	@Success	200	{object}	profile.Settings
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/profiles/{id}/activate [post]
func (e *ActivateProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	profiles := svcctx.ProfilesFrom(r.Context())
	if profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "profile store not initialized")
		return
	}

	settings, err := profiles.Activate(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (e *ActivateProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Activate a provider profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var settings profile.Settings
			if err := client.Post(cmd.Context(), "/api/profiles/"+args[0]+"/activate", nil, &settings); err != nil {
				return err
			}
			return api.Output(settings)
		},
	}
}
