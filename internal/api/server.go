package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/software-catalog/internal/auth"
	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/storage"
)

// Deps are the collaborators the HTTP layer needs. Queue, Archive, Drafter
// and Limiter may be nil; the matching feature is then off.
type Deps struct {
	Importer ImportService
	Catalog  CatalogService
	Queue    JobQueue
	Archive  storage.Archive
	Drafter  DescriptionDrafter
	Limiter  RowLimiter
	Auth     *auth.AuthManager
	Health   *HealthChecker
	Import   config.ImportConfig
	// AllowedOrigins for CORS; empty allows same-origin only.
	AllowedOrigins []string
}

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer builds the router for deps.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(NewHandlers(deps), deps),
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Generous read/write timeouts for spreadsheet uploads.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
