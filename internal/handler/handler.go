// Package handler exposes the challenge engine over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/overclocked/breakai/internal/domain"
	"github.com/overclocked/breakai/internal/service"
)

// GatewayStats is the slice of the gateway the admin surface reads.
type GatewayStats interface {
	Stats() []service.CredentialStats
}

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	sessions *service.SessionService
	gateway  GatewayStats
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Sessions *service.SessionService
	Gateway  GatewayStats
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		sessions: deps.Sessions,
		gateway:  deps.Gateway,
	}
}

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/personalities", h.ListPersonalities)
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/messages", h.PostMessage)
			r.Post("/code", h.SubmitCode)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/sessions", h.AdminListSessions)
			r.Delete("/sessions", h.AdminClearSessions)
			r.Get("/distribution", h.AdminDistribution)
			r.Get("/gateway", h.AdminGatewayStats)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsInvalidInput(err):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionCompleted):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
