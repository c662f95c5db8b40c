// Package server wires the document, overlay, transcription, and profile
// services into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/internal/config"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/home"
	"github.com/bindery/bindery/internal/overlay"
	"github.com/bindery/bindery/internal/pdf"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/server/endpoints"
	"github.com/bindery/bindery/internal/svcctx"
	"github.com/bindery/bindery/internal/transcribe"
)

// Server is the main Bindery HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the bindery home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
	// SwaggerSpecPath overrides the swagger.json location
	SwaggerSpecPath string
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if err := cfg.Home.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to prepare home directory: %w", err)
	}

	dpi := pdf.DefaultDPI
	var requestTimeout time.Duration
	var maxRetries int
	if cfg.ConfigManager != nil {
		conf := cfg.ConfigManager.Get()
		if conf.Render.DPI > 0 {
			dpi = conf.Render.DPI
		}
		requestTimeout = time.Duration(conf.Transcribe.TimeoutSeconds) * time.Second
		maxRetries = conf.Transcribe.MaxRetries
	}

	docs := document.NewStore()
	transcriber := transcribe.NewManager(transcribe.ManagerConfig{
		Store:      docs,
		Renderer:   &pdf.PopplerRenderer{DPI: dpi},
		Timeout:    requestTimeout,
		MaxRetries: maxRetries,
		Logger:     cfg.Logger,
	})

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services: &svcctx.Services{
			Documents:   docs,
			Overlays:    overlay.NewStore(),
			Transcriber: transcriber,
			Profiles:    profile.NewStore(cfg.Home.ProfilesPath()),
			Config:      cfg.ConfigManager,
			Logger:      cfg.Logger,
			Home:        cfg.Home,
		},
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: s.withServices(mux),
		// No blanket write timeout: uploads and exports of large PDFs can
		// legitimately take a while.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.configMgr != nil {
		s.configMgr.WatchConfig()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Services exposes the core services, mainly for tests.
func (s *Server) Services() *svcctx.Services {
	return s.services
}

// Handler returns the root HTTP handler with service injection applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
