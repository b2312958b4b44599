package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTurns() []models.Turn {
	ts := time.UnixMilli(1700000000000)
	return []models.Turn{
		{Role: models.RoleUser, Text: "Offer at 520k", Timestamp: ts},
		{Role: models.RoleAssistant, Text: "Noted.", Timestamp: ts.Add(time.Millisecond)},
	}
}

type recordingSink struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{}
}

func (r *recordingSink) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sessionID)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestFanOut_DeliversToAllAndNamesFailures(t *testing.T) {
	ok := &recordingSink{}
	bad := &recordingSink{err: errors.New("disk full")}
	fan := NewFanOut(Named{Name: "transcript", Sink: ok}, Named{Name: "nats", Sink: bad})

	err := fan.Submit(context.Background(), "s1", sampleTurns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"nats"}, FailedSinks(err))
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, bad.count())
	assert.Equal(t, 2, fan.Len())
}

func TestFanOut_NoErrors(t *testing.T) {
	fan := NewFanOut(Named{Name: "a", Sink: &recordingSink{}})
	assert.NoError(t, fan.Submit(context.Background(), "s1", sampleTurns()))
	assert.Nil(t, FailedSinks(nil))
}

type fakeIndexer struct {
	docs []models.Document
}

func (f *fakeIndexer) Index(_ context.Context, docs []models.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}

func TestIndexSink_ConvertsTurns(t *testing.T) {
	idx := &fakeIndexer{}
	turns := append(sampleTurns(), models.Turn{Role: models.RoleAssistant})

	require.NoError(t, NewIndexSink(idx).Submit(context.Background(), "s1", turns))
	require.Len(t, idx.docs, 2)
	assert.Equal(t, "Offer at 520k", idx.docs[0].Text)
	assert.Equal(t, "chat:s1:user", idx.docs[0].Source)
	assert.Equal(t, "chat:s1:assistant", idx.docs[1].Source)
	assert.NotEqual(t, idx.docs[0].ID, idx.docs[1].ID)
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return f.err
}

func TestNATSSink_PublishesBatch(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNATSSink(pub, "agent.turns")

	require.NoError(t, sink.Submit(context.Background(), "s1", sampleTurns()))
	assert.Equal(t, "agent.turns", pub.subject)

	var batch TurnBatch
	require.NoError(t, json.Unmarshal(pub.data, &batch))
	assert.Equal(t, "s1", batch.SessionID)
	require.Len(t, batch.Turns, 2)
	assert.Equal(t, models.RoleUser, batch.Turns[0].Role)
}

func TestNATSSink_CancelledContext(t *testing.T) {
	pub := &fakePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewNATSSink(pub, "agent.turns").Submit(ctx, "s1", sampleTurns())
	require.Error(t, err)
	assert.Nil(t, pub.data)
}

func TestSubmitter_DetachesFromRequestContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	sub := NewSubmitter(sink, time.Second, nil, discardLogger())

	reqCtx, cancel := context.WithCancel(context.Background())
	sub.Submit(reqCtx, "s1", sampleTurns())
	cancel()
	close(sink.block)

	require.NoError(t, sub.Wait(context.Background()))
	assert.Equal(t, 1, sink.count())
}

func TestSubmitter_CountsFailures(t *testing.T) {
	m := metrics.New()
	fan := NewFanOut(
		Named{Name: "transcript", Sink: &recordingSink{}},
		Named{Name: "index", Sink: &recordingSink{err: errors.New("qdrant down")}},
	)
	sub := NewSubmitter(fan, time.Second, m, discardLogger())

	sub.Submit(context.Background(), "s1", sampleTurns())
	require.NoError(t, sub.Wait(context.Background()))

	count, err := testutil.GatherAndCount(m.Registry(), "agent_ingest_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitter_WaitHonoursContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	sub := NewSubmitter(sink, time.Minute, nil, discardLogger())
	sub.Submit(context.Background(), "s1", sampleTurns())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sub.Wait(ctx), context.DeadlineExceeded)

	close(sink.block)
	require.NoError(t, sub.Wait(context.Background()))
}

func TestSubmitter_NilIsNoop(t *testing.T) {
	var sub *Submitter
	sub.Submit(context.Background(), "s1", sampleTurns())
}

type capturingSink struct {
	turns []models.Turn
	calls int
}

func (c *capturingSink) Submit(_ context.Context, _ string, turns []models.Turn) error {
	c.calls++
	c.turns = turns
	return nil
}

func TestRedact(t *testing.T) {
	next := &capturingSink{}
	sink := Redact(next)

	require.NoError(t, sink.Submit(context.Background(), "s1", []models.Turn{
		{Role: models.RoleUser, Text: "offer <private>max 540k</private>520k"},
		{Role: models.RoleAssistant, Text: "Noted."},
	}))
	require.Len(t, next.turns, 2)
	assert.Equal(t, "offer 520k", next.turns[0].Text)

	require.NoError(t, sink.Submit(context.Background(), "s1", []models.Turn{
		{Role: models.RoleUser, Text: "<private>all secret</private>"},
	}))
	assert.Equal(t, 1, next.calls)
}
