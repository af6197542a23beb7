// Package server exposes the whereabouts HTTP and WebSocket API:
// sample collection, CSV export, and streaming location prediction.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/whereabouts/classifier"
	"github.com/teranos/whereabouts/config"
	"github.com/teranos/whereabouts/models"
	"github.com/teranos/whereabouts/store"
)

// Server wires the entity store, model registry and classifier behind the
// HTTP API. Each request and each prediction session runs independently;
// the server itself holds no per-request state.
type Server struct {
	cfg        *config.Config
	store      *store.SQLStore
	registry   *models.Registry
	classifier classifier.Classifier
	logger     *zap.SugaredLogger

	mux        *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a server with all routes registered. The http.Server is
// built here so Start and Shutdown may run on different goroutines
// without racing on the field.
func New(cfg *config.Config, st *store.SQLStore, registry *models.Registry, cls classifier.Classifier, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:        cfg,
		store:      st,
		registry:   registry,
		classifier: cls,
		logger:     logger,
		mux:        http.NewServeMux(),
	}
	s.setupRoutes()
	s.upgrader = s.newUpgrader()
	s.httpServer = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.mux,
	}
	return s
}

// Handler returns the root handler, primarily for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving on the configured address. Blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infow("Server listening", "addr", s.cfg.Server.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// HandleHealth reports service liveness
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "whereabouts",
	})
}
