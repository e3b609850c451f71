// Package server is the JSON API behind the trade dashboard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/server/middleware"
	"tradeshot/internal/server/ws"
)

type Config struct {
	Port        int
	CORSOrigins []string
	UploadDir   string
}

type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New registers every route on a gorilla/mux router. hub may be nil, in which
// case /ws is not served.
func New(cfg Config, proc interfaces.Processor, hub *ws.Hub) *Server {
	h := newHandlers(proc, cfg.UploadDir)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/extract", h.extract).Methods(http.MethodPost)
	api.HandleFunc("/extract/upload", h.upload).Methods(http.MethodPost)
	api.HandleFunc("/search", h.search).Methods(http.MethodPost)
	api.HandleFunc("/trades/latest", h.latest).Methods(http.MethodGet)
	api.HandleFunc("/trades/{id}", h.trade).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	api.HandleFunc("/trade-log", h.tradeLog).Methods(http.MethodGet)
	api.HandleFunc("/images", h.images).Methods(http.MethodGet)

	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))).Methods(http.MethodGet)

	if hub != nil {
		router.HandleFunc("/ws", hub.HandleWS)
	}

	var handler http.Handler = router
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)

	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler exposes the full middleware chain, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start blocks until the server fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "Dashboard API listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Dashboard API shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
