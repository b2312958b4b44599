// Package chat runs one planning turn: retrieve evidence, ask the planner,
// recover the plan and register its proposed actions for human approval.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/evidence"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/llm"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/plan"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/requestid"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/retrieval"
)

// Ingester accepts finished turns without blocking the caller.
type Ingester interface {
	Submit(ctx context.Context, sessionID string, turns []models.Turn)
}

// Options tunes the orchestrator.
type Options struct {
	TopK            int
	UpstreamTimeout time.Duration
}

// Service is the planning orchestrator.
type Service struct {
	retriever retrieval.Retriever
	planner   llm.Planner
	registry  actions.Registry
	ingester  Ingester
	opts      Options
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the orchestrator. ingester may be nil.
func NewService(
	retriever retrieval.Retriever,
	planner llm.Planner,
	registry actions.Registry,
	ingester Ingester,
	opts Options,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = 30 * time.Second
	}
	return &Service{
		retriever: retriever,
		planner:   planner,
		registry:  registry,
		ingester:  ingester,
		opts:      opts,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// UserContent renders the planner's user message.
func UserContent(message, evidenceBlock string) string {
	return fmt.Sprintf("User message:\n%s\n\nRetrieved evidence:\n%s", message, evidenceBlock)
}

// HandleChatTurn answers one user message. The registry is only touched once
// both collaborators have answered, so an upstream failure leaves no records.
func (s *Service) HandleChatTurn(ctx context.Context, sessionID, message string) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		s.metrics.ChatTurn("invalid")
		return nil, fmt.Errorf("%w: message is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(sessionID) == "" {
		s.metrics.ChatTurn("invalid")
		return nil, fmt.Errorf("%w: sessionId is required", apperr.ErrValidation)
	}

	chunks, err := s.retrieve(ctx, message)
	if err != nil {
		s.metrics.ChatTurn("upstream_error")
		s.logger.Error("retrieval failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: retrieve evidence: %w", apperr.ErrUpstream, err)
	}

	if len(chunks) > s.opts.TopK {
		chunks = chunks[:s.opts.TopK]
	}
	userContent := UserContent(message, evidence.Assemble(chunks, s.opts.TopK))

	raw, err := s.complete(ctx, userContent)
	if err != nil {
		s.metrics.ChatTurn("upstream_error")
		s.logger.Error("planner failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: plan reply: %w", apperr.ErrUpstream, err)
	}

	result := plan.Parse(raw, message)
	s.metrics.PlanParse(string(result.Outcome))
	if result.Fallback() {
		s.logger.Warn("planner output not parseable, using fallback",
			"session_id", sessionID,
			"reason", result.Reason,
			"raw_len", len(raw),
		)
	}

	records := s.registry.Propose(sessionID, result.Actions)

	s.ingest(ctx, sessionID, message, result.Reply)

	s.metrics.ChatTurn(string(result.Outcome))
	s.logger.Info("chat turn handled",
		"session_id", sessionID,
		"chunks", len(chunks),
		"proposed", len(records),
		"outcome", result.Outcome,
	)

	return &models.ChatResponse{
		ReplyText:       result.Reply,
		ProposedActions: records,
		Evidence:        chunks,
	}, nil
}

func (s *Service) retrieve(ctx context.Context, message string) ([]models.EvidenceChunk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	chunks, err := s.retriever.Search(ctx, message, s.opts.TopK)
	s.metrics.ObserveUpstream("retrieval", start, err)
	if chunks == nil {
		chunks = []models.EvidenceChunk{}
	}
	return chunks, err
}

func (s *Service) complete(ctx context.Context, userContent string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.planner.Complete(ctx, llm.SystemPrompt, userContent)
	s.metrics.ObserveUpstream("planner", start, err)
	return raw, err
}

func (s *Service) ingest(ctx context.Context, sessionID, message, reply string) {
	if s.ingester == nil {
		return
	}
	now := s.now()
	reqID := requestid.From(ctx)
	s.ingester.Submit(ctx, sessionID, []models.Turn{
		{Role: models.RoleUser, Text: message, Timestamp: now, RequestID: reqID},
		{Role: models.RoleAssistant, Text: reply, Timestamp: now.Add(time.Millisecond), RequestID: reqID},
	})
}
