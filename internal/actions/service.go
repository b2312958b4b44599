package actions

import (
	"log/slog"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Service applies human approval decisions to the registry and records them.
// An approval only marks the record; executing the action is left to
// whatever consumes approved records.
type Service struct {
	registry Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates an approval service over registry.
func NewService(registry Registry, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{registry: registry, metrics: m, logger: logger}
}

// Decide transitions a proposed record to approved or rejected.
func (s *Service) Decide(sessionID, proposalID string, approve bool) (models.ActionRecord, error) {
	decision := "reject"
	if approve {
		decision = "approve"
	}

	rec, err := s.registry.SetStatus(sessionID, proposalID, DecisionStatus(approve))
	if err != nil {
		s.metrics.Decision(decision, apperr.Code(err))
		s.logger.Info("action decision refused",
			"session_id", sessionID,
			"proposal_id", proposalID,
			"decision", decision,
			"error", err,
		)
		return rec, err
	}

	s.metrics.Decision(decision, "ok")
	if approve {
		s.logger.Info("action approved",
			"session_id", sessionID,
			"proposal_id", rec.ID,
			"title", rec.Title,
		)
	} else {
		s.logger.Info("action rejected",
			"session_id", sessionID,
			"proposal_id", rec.ID,
		)
	}
	return rec, nil
}

// List returns a session's records; unknown sessions yield an empty slice.
func (s *Service) List(sessionID string) []models.ActionRecord {
	return s.registry.ListBySession(sessionID)
}

// Registry returns the underlying store.
func (s *Service) Registry() Registry {
	return s.registry
}
