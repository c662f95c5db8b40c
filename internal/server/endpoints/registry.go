package endpoints

import (
	"github.com/bindery/bindery/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadDocumentEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DeleteDocumentEndpoint{},

		// Page and overlay endpoints
		&ListPagesEndpoint{},
		&SetPageTextEndpoint{},
		&SplitPageEndpoint{},
		&ResetOverlayEndpoint{},

		// Chapter endpoints
		&ListChaptersEndpoint{},
		&SetChapterEndpoint{},

		// Transcription endpoints
		&TranscriptionStatusEndpoint{},
		&StartTranscriptionEndpoint{},
		&ResumeTranscriptionEndpoint{},
		&RescanTranscriptionEndpoint{},
		&CancelTranscriptionEndpoint{},

		// Export endpoint
		&ExportEndpoint{},

		// Profile endpoints
		&GetProfilesEndpoint{},
		&UpdateProfilesEndpoint{},
		&ActivateProfileEndpoint{},
		&ListModelsEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}
