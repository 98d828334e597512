package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/overclocked/breakai/internal/domain"
)

type createSessionRequest struct {
	TeamName    string `json:"team_name"`
	Personality string `json:"personality"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type submitCodeRequest struct {
	Code string `json:"code"`
}

// CreateSession starts a new challenge session for a team.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.Create(r.Context(), req.TeamName, domain.Personality(req.Personality))
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusCreated, session)
}

// GetSession returns the current session projection.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

// PostMessage appends a chat turn and returns the updated session. A model
// backend failure still yields 200: the session carries the error notice
// turn and the team may resend.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.SendMessage(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

// SubmitCode validates a 6-digit guess against the session's secret.
func (h *Handler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	var req submitCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessions.SubmitCode(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, result)
}

// ListPersonalities serves the catalog plus a balance-aware suggestion for
// the selection screen.
func (h *Handler) ListPersonalities(w http.ResponseWriter, r *http.Request) {
	suggested, err := h.sessions.SuggestPersonality(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"personalities": domain.Catalog(),
		"suggested":     suggested,
	})
}
