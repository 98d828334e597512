package handler

import (
	"net/http"
)

// AdminListSessions returns every session for the read-only admin viewer.
func (h *Handler) AdminListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, sessions)
}

// AdminClearSessions wipes the whole store, secrets included. This is the
// only deletion path a session has.
func (h *Handler) AdminClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDistribution reports personality assignment counts.
func (h *Handler) AdminDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.sessions.Distribution(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, dist)
}

// AdminGatewayStats reports per-credential usage and estimated spend.
func (h *Handler) AdminGatewayStats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.gateway.Stats())
}
