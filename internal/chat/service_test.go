package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/apperr"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/llm"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/plan"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/requestid"
)

type fakeRetriever struct {
	mu     sync.Mutex
	chunks []models.EvidenceChunk
	err    error
	calls  int
	topK   int
}

func (f *fakeRetriever) Search(ctx context.Context, _ string, topK int) ([]models.EvidenceChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type recordingIngester struct {
	mu      sync.Mutex
	session string
	turns   []models.Turn
	calls   int
}

func (r *recordingIngester) Submit(_ context.Context, sessionID string, turns []models.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.session = sessionID
	r.turns = turns
}

type harness struct {
	svc       *Service
	retriever *fakeRetriever
	registry  *actions.MemoryRegistry
	ingester  *recordingIngester
	approvals *actions.Service
	prompts   []string
}

func newHarness(t *testing.T, chunks []models.EvidenceChunk, reply string, plannerErr error) *harness {
	t.Helper()
	h := &harness{
		retriever: &fakeRetriever{chunks: chunks},
		registry:  actions.NewMemoryRegistry(),
		ingester:  &recordingIngester{},
	}
	planner := llm.PlannerFunc(func(ctx context.Context, system, user string) (string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		assert.Equal(t, llm.SystemPrompt, system)
		h.prompts = append(h.prompts, user)
		return reply, plannerErr
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	h.svc = NewService(h.retriever, planner, h.registry, h.ingester, Options{UpstreamTimeout: time.Second}, m, logger)
	h.approvals = actions.NewService(h.registry, m, logger)
	return h
}

func twoChunks() []models.EvidenceChunk {
	return []models.EvidenceChunk{
		{Source: "email", Snippet: "Buyer offered 520k", Score: 0.9},
		{Source: "notes", Snippet: "Seller floor is 510k", Score: 0.8},
	}
}

func TestHandleChatTurn_EndToEnd(t *testing.T) {
	h := newHarness(t, twoChunks(), `{"text":"Noted.","actions":[{"title":"Draft addendum"}]}`, nil)
	ctx := requestid.With(context.Background(), "req-42")

	resp, err := h.svc.HandleChatTurn(ctx, "s1", "Offer at 520k")
	require.NoError(t, err)

	assert.Equal(t, "Noted.", resp.ReplyText)
	require.Len(t, resp.ProposedActions, 1)
	assert.Equal(t, models.ActionStatusProposed, resp.ProposedActions[0].Status)
	assert.Equal(t, "Draft addendum", resp.ProposedActions[0].Title)
	assert.NotEmpty(t, resp.ProposedActions[0].ID)
	assert.Equal(t, twoChunks(), resp.Evidence)

	require.Len(t, h.prompts, 1)
	assert.Equal(t,
		"User message:\nOffer at 520k\n\nRetrieved evidence:\n#1 [email] Buyer offered 520k\n---\n#2 [notes] Seller floor is 510k",
		h.prompts[0])
	assert.Equal(t, 6, h.retriever.topK)

	require.Equal(t, 1, h.ingester.calls)
	assert.Equal(t, "s1", h.ingester.session)
	require.Len(t, h.ingester.turns, 2)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Text: "Offer at 520k", Timestamp: h.ingester.turns[0].Timestamp, RequestID: "req-42"}, h.ingester.turns[0])
	assert.Equal(t, "Noted.", h.ingester.turns[1].Text)
	assert.True(t, h.ingester.turns[1].Timestamp.After(h.ingester.turns[0].Timestamp))

	listed := h.registry.ListBySession("s1")
	require.Len(t, listed, 1)
	assert.Equal(t, resp.ProposedActions[0].ID, listed[0].ID)
}

func TestHandleChatTurn_ApprovalFlow(t *testing.T) {
	h := newHarness(t, twoChunks(), `{"text":"Noted.","actions":[{"title":"Draft addendum"}]}`, nil)

	resp, err := h.svc.HandleChatTurn(context.Background(), "s1", "Offer at 520k")
	require.NoError(t, err)
	id := resp.ProposedActions[0].ID

	rec, err := h.approvals.Decide("s1", id, true)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusApproved, rec.Status)

	listed := h.approvals.List("s1")
	require.Len(t, listed, 1)
	assert.Equal(t, models.ActionStatusApproved, listed[0].Status)

	_, err = h.approvals.Decide("s1", id, true)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestHandleChatTurn_UnknownSessionApproval(t *testing.T) {
	h := newHarness(t, nil, `{"text":"ok"}`, nil)
	_, err := h.approvals.Decide("never-used", "anything", true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHandleChatTurn_Validation(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		message   string
	}{
		{name: "empty message", sessionID: "s1", message: ""},
		{name: "whitespace message", sessionID: "s1", message: "  \n\t "},
		{name: "empty session", sessionID: "", message: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, twoChunks(), `{"text":"x"}`, nil)
			_, err := h.svc.HandleChatTurn(context.Background(), tt.sessionID, tt.message)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Zero(t, h.retriever.calls)
			assert.Empty(t, h.prompts)
			assert.Zero(t, h.ingester.calls)
		})
	}
}

func TestHandleChatTurn_RetrievalFailure(t *testing.T) {
	h := newHarness(t, nil, `{"text":"x","actions":[{"title":"a"}]}`, nil)
	h.retriever.err = errors.New("qdrant unreachable")

	_, err := h.svc.HandleChatTurn(context.Background(), "s1", "hello")
	require.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Contains(t, err.Error(), "qdrant unreachable")
	assert.Empty(t, h.prompts)
	assert.Empty(t, h.registry.ListBySession("s1"))
	assert.Zero(t, h.ingester.calls)
}

func TestHandleChatTurn_PlannerFailure(t *testing.T) {
	h := newHarness(t, twoChunks(), "", context.DeadlineExceeded)

	_, err := h.svc.HandleChatTurn(context.Background(), "s1", "hello")
	require.ErrorIs(t, err, apperr.ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, h.registry.Sessions())
	assert.Zero(t, h.ingester.calls)
}

type retrieverFunc func(ctx context.Context, query string, topK int) ([]models.EvidenceChunk, error)

func (f retrieverFunc) Search(ctx context.Context, query string, topK int) ([]models.EvidenceChunk, error) {
	return f(ctx, query, topK)
}

func TestHandleChatTurn_HungCollaboratorTimesOut(t *testing.T) {
	hang := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	ready := retrieverFunc(func(context.Context, string, int) ([]models.EvidenceChunk, error) {
		return twoChunks(), nil
	})
	answer := llm.PlannerFunc(func(context.Context, string, string) (string, error) {
		return `{"text":"x","actions":[{"title":"a"}]}`, nil
	})

	tests := []struct {
		name      string
		retriever retrieverFunc
		planner   llm.PlannerFunc
	}{
		{
			name: "retriever",
			retriever: func(ctx context.Context, _ string, _ int) ([]models.EvidenceChunk, error) {
				return nil, hang(ctx)
			},
			planner: answer,
		},
		{
			name:      "planner",
			retriever: ready,
			planner: func(ctx context.Context, _, _ string) (string, error) {
				return "", hang(ctx)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := actions.NewMemoryRegistry()
			ingester := &recordingIngester{}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			svc := NewService(tt.retriever, tt.planner, registry, ingester,
				Options{UpstreamTimeout: 50 * time.Millisecond}, metrics.New(), logger)

			start := time.Now()
			_, err := svc.HandleChatTurn(context.Background(), "s1", "hello")
			elapsed := time.Since(start)

			require.ErrorIs(t, err, apperr.ErrUpstream)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, elapsed, time.Second)
			assert.Zero(t, registry.Sessions())
			assert.Zero(t, ingester.calls)
		})
	}
}

func TestHandleChatTurn_UnparseablePlan(t *testing.T) {
	h := newHarness(t, twoChunks(), "Sure! I can help with that.", nil)

	resp, err := h.svc.HandleChatTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, plan.ParseFailedReply("hello"), resp.ReplyText)
	assert.Empty(t, resp.ProposedActions)
	assert.NotNil(t, resp.ProposedActions)
	assert.Equal(t, 1, h.ingester.calls)
}

func TestHandleChatTurn_EmptyEvidence(t *testing.T) {
	h := newHarness(t, nil, `{"text":"Nothing on file."}`, nil)

	resp, err := h.svc.HandleChatTurn(context.Background(), "s1", "status?")
	require.NoError(t, err)
	assert.Equal(t, "Nothing on file.", resp.ReplyText)
	assert.NotNil(t, resp.Evidence)
	assert.Empty(t, resp.Evidence)
	assert.True(t, strings.HasSuffix(h.prompts[0], "Retrieved evidence:\n"))
}

func TestHandleChatTurn_TruncatesEvidenceToTopK(t *testing.T) {
	many := make([]models.EvidenceChunk, 9)
	for i := range many {
		many[i] = models.EvidenceChunk{Source: "s", Snippet: "x"}
	}
	h := newHarness(t, many, `{"text":"ok"}`, nil)

	resp, err := h.svc.HandleChatTurn(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Len(t, resp.Evidence, 6)
}

func TestHandleChatTurn_ConcurrentSessions(t *testing.T) {
	h := newHarness(t, twoChunks(), `{"text":"ok","actions":[{"title":"a"},{"title":"b"}]}`, nil)
	h.svc.planner = llm.PlannerFunc(func(context.Context, string, string) (string, error) {
		return `{"text":"ok","actions":[{"title":"a"},{"title":"b"}]}`, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := "s" + string(rune('a'+i%4))
			_, err := h.svc.HandleChatTurn(context.Background(), session, "go")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, s := range []string{"sa", "sb", "sc", "sd"} {
		total += len(h.registry.ListBySession(s))
	}
	assert.Equal(t, 40, total)
}
