// Package httpapi is the HTTP driving adapter: OAuth connect/callback
// routes and the scheduling and inbox API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/services"
)

// Server wires the HTTP routes over the core services.
type Server struct {
	registry  *services.Registry
	scheduler *services.Scheduler
	creds     driven.CredentialStore
}

// NewServer creates the HTTP adapter.
func NewServer(registry *services.Registry, scheduler *services.Scheduler, creds driven.CredentialStore) *Server {
	return &Server{
		registry:  registry,
		scheduler: scheduler,
		creds:     creds,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/auth/{provider}", func(r chi.Router) {
		r.Get("/connect", s.handleConnect)
		r.Get("/callback", s.handleCallback)
		r.Post("/disconnect", s.handleDisconnect)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/interviews/schedule", s.handleSchedule)
		r.Get("/calendar/events", s.handleListEvents)
		r.Get("/mail/messages", s.handleListMessages)
		r.Get("/mail/threads/{id}", s.handleGetThread)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotConnected):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotConfigured):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// providerFromURL resolves the {provider} route parameter.
func providerFromURL(r *http.Request) (domain.ProviderType, error) {
	p := domain.ProviderType(chi.URLParam(r, "provider"))
	switch p {
	case domain.ProviderGoogle, domain.ProviderMicrosoft, domain.ProviderZoom:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, string(p))
	}
}
