package api

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the HTTP server with the configured router.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer builds a server around the handlers and CORS whitelist.
func NewServer(h *Handlers, allowedOrigins []string) *Server {
	return &Server{handler: SetupRoutes(h, allowedOrigins)}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Read/write timeouts sized for multipart CSV uploads.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
