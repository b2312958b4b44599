package api

import (
	"net/http"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// ActionHandler serves the approval endpoints.
type ActionHandler struct {
	svc *actions.Service
}

func NewActionHandler(svc *actions.Service) *ActionHandler {
	return &ActionHandler{svc: svc}
}

// Approve handles POST /approve.
func (h *ActionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveRequest
	if err := decodeJSON(r, &req); err != nil || req.SessionID == "" || req.ProposalID == "" || req.Approve == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "Missing sessionId/proposalId/approve",
			Code:  apperr.Code(apperr.ErrValidation),
		})
		return
	}

	rec, err := h.svc.Decide(req.SessionID, req.ProposalID, *req.Approve)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ApproveResponse{Action: rec})
}

// List handles GET /actions?sessionId=. Unknown or missing sessions yield
// an empty list.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	list := []models.ActionRecord{}
	if sessionID != "" {
		list = h.svc.List(sessionID)
	}
	writeJSON(w, http.StatusOK, models.ActionsResponse{Actions: list})
}
