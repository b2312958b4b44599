package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/transcript"
)

// SessionHandler exposes stored transcripts.
type SessionHandler struct {
	transcripts *transcript.Store
}

func NewSessionHandler(transcripts *transcript.Store) *SessionHandler {
	return &SessionHandler{transcripts: transcripts}
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.transcripts.ListSessions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list sessions: "+err.Error())
		return
	}
	if list == nil {
		list = []*models.ChatSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

// ListTurns handles GET /sessions/{id}/turns
func (h *SessionHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	turns, err := h.transcripts.ListTurns(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list turns: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.TurnsResponse{Turns: turns})
}
