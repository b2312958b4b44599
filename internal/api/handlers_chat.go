package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/chat"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/requestid"
)

// User-facing reply texts for turns that never reached the planner.
const (
	replyEmptyMessage = "Please provide a message."
	replyNoSession    = "Please provide a session id."
	replyUpstream     = "Sorry, I couldn't reach the planning service. Please try again."
	replyInternal     = "Sorry, something went wrong handling that message."
)

type ChatHandler struct {
	svc    *chat.Service
	logger *slog.Logger
}

func NewChatHandler(svc *chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// Chat handles POST /chat. An unreadable body is treated as an empty message.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		req = models.ChatRequest{}
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, emptyEnvelope(replyEmptyMessage, ""))
		return
	}

	resp, err := h.svc.HandleChatTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		status := statusFor(err)
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, status, emptyEnvelope(replyNoSession, err.Error()))
		case errors.Is(err, apperr.ErrUpstream):
			writeJSON(w, status, emptyEnvelope(replyUpstream, "upstream failure"))
		default:
			h.logger.Error("chat turn failed", "error", err, "request_id", requestid.From(r.Context()))
			writeJSON(w, status, emptyEnvelope(replyInternal, "internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, models.ChatEnvelope{Reply: *resp})
}

func emptyEnvelope(text, errMsg string) models.ChatEnvelope {
	return models.ChatEnvelope{
		Reply: models.ChatResponse{
			ReplyText:       text,
			ProposedActions: []models.ActionRecord{},
			Evidence:        []models.EvidenceChunk{},
		},
		Error: errMsg,
	}
}
