// Package server provides the HTTP server setup for hate-2-action.
package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gumanista/hate-2-action/internal/api"
	"github.com/gumanista/hate-2-action/internal/middleware"
	"github.com/gumanista/hate-2-action/internal/store"
)

// Server holds the router and its dependencies.
type Server struct {
	Router *chi.Mux
	Logger *slog.Logger
}

// New creates a Server with all routes configured.
func New(db *store.DB, processor api.Processor, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))
	r.Use(middleware.RequestLogging(logger))

	health := api.NewHealthHandler(db)
	messages := api.NewMessageHandler(processor)

	r.Get("/health", health.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages/process", messages.Process)
	})

	return &Server{Router: r, Logger: logger}
}
