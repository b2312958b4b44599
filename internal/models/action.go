package models

import "time"

// ActionStatus is the HITL lifecycle state of a proposed action.
type ActionStatus string

const (
	ActionStatusProposed ActionStatus = "proposed"
	ActionStatusApproved ActionStatus = "approved"
	ActionStatusRejected ActionStatus = "rejected"
)

func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusProposed, ActionStatusApproved, ActionStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined out of s.
func (s ActionStatus) IsTerminal() bool {
	return s == ActionStatusApproved || s == ActionStatusRejected
}

// ActionRecord is a proposed unit of work awaiting (or carrying) a human decision.
type ActionRecord struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId"`
	Title       string       `json:"title"`
	Description string       `json:"desc,omitempty"`
	Status      ActionStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	DecidedAt   *time.Time   `json:"decidedAt,omitempty"`
}

// ProposedTitle is one candidate action recovered from planner output.
type ProposedTitle struct {
	Title       string `json:"title"`
	Description string `json:"desc,omitempty"`
}
