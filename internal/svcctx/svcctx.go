// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/bindery/bindery/internal/config"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/home"
	"github.com/bindery/bindery/internal/overlay"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/transcribe"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Documents   *document.Store
	Overlays    *overlay.Store
	Transcriber *transcribe.Manager
	Profiles    *profile.Store
	Config      *config.Manager
	Logger      *slog.Logger
	Home        *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// DocumentsFrom extracts the document store from context.
func DocumentsFrom(ctx context.Context) *document.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Documents
	}
	return nil
}

// OverlaysFrom extracts the edit overlay store from context.
func OverlaysFrom(ctx context.Context) *overlay.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Overlays
	}
	return nil
}

// TranscriberFrom extracts the transcription manager from context.
func TranscriberFrom(ctx context.Context) *transcribe.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Transcriber
	}
	return nil
}

// ProfilesFrom extracts the provider profile store from context.
func ProfilesFrom(ctx context.Context) *profile.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Profiles
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
