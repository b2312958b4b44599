package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Submitter hands turns to a sink on a background goroutine. Failures are
// logged and counted, never returned to the caller.
type Submitter struct {
	sink    Sink
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewSubmitter(sink Sink, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Submitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Submitter{
		sink:    sink,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Submit returns immediately. The submission keeps ctx's values (request id)
// but not its cancellation, so it outlives the HTTP request.
func (s *Submitter) Submit(ctx context.Context, sessionID string, turns []models.Turn) {
	if s == nil || s.sink == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		runCtx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()

		start := time.Now()
		err := s.sink.Submit(runCtx, sessionID, turns)
		s.metrics.ObserveUpstream("ingest", start, err)
		if err == nil {
			return
		}

		failed := FailedSinks(err)
		if len(failed) == 0 {
			failed = []string{"default"}
		}
		for _, name := range failed {
			s.metrics.IngestFailure(name)
		}
		s.logger.Warn("ingestion failed",
			"session_id", sessionID,
			"turns", len(turns),
			"sinks", failed,
			"error", err,
		)
	}()
}

// Wait blocks until in-flight submissions finish or ctx is done.
func (s *Submitter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
