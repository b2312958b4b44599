package models

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse is the result of one planning turn.
type ChatResponse struct {
	ReplyText       string          `json:"text"`
	ProposedActions []ActionRecord  `json:"proposedActions"`
	Evidence        []EvidenceChunk `json:"chunks"`
}

// ChatEnvelope wraps ChatResponse the way the chat UI expects it.
type ChatEnvelope struct {
	Reply ChatResponse `json:"reply"`
	Error string       `json:"error,omitempty"`
}

// ApproveRequest is the payload for POST /approve. Approve is a pointer so a
// missing field can be told apart from false.
type ApproveRequest struct {
	SessionID  string `json:"sessionId"`
	ProposalID string `json:"proposalId"`
	Approve    *bool  `json:"approve"`
}

// ApproveResponse is returned from POST /approve.
type ApproveResponse struct {
	Action ActionRecord `json:"action"`
}

// ActionsResponse is returned from GET /actions.
type ActionsResponse struct {
	Actions []ActionRecord `json:"actions"`
}

// TurnsResponse is returned from GET /sessions/{id}/turns.
type TurnsResponse struct {
	Turns []*StoredTurn `json:"turns"`
}

// ErrorResponse is the body of every non-chat error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ServiceCheck is the status of one dependency in the health report.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status           string       `json:"status"`
	Embedding        ServiceCheck `json:"embedding"`
	VectorStore      ServiceCheck `json:"vectorStore"`
	DB               ServiceCheck `json:"db"`
	RegistrySessions int          `json:"registrySessions"`
}
