package actions

import (
	"fmt"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Transition validates a move from current to next. proposed is the only
// non-terminal state; approved and rejected accept no further transitions.
func Transition(current, next models.ActionStatus) error {
	if !next.IsValid() || next == models.ActionStatusProposed {
		return fmt.Errorf("target status %q: %w", next, apperr.ErrValidation)
	}
	if current.IsTerminal() {
		return fmt.Errorf("action already %s: %w", current, apperr.ErrInvalidTransition)
	}
	return nil
}

// DecisionStatus maps an approval decision to its terminal status.
func DecisionStatus(approve bool) models.ActionStatus {
	if approve {
		return models.ActionStatusApproved
	}
	return models.ActionStatusRejected
}
