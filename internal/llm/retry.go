package llm

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig holds retry configuration for planner requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, first call included.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns retry defaults sized for an interactive chat turn.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       2,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Second,
	}
}

// RetryingPlanner retries transient failures of the wrapped Planner. The
// caller's context bounds the total time spent, backoff included.
type RetryingPlanner struct {
	next   Planner
	cfg    RetryConfig
	logger *slog.Logger
}

// NewRetryingPlanner wraps next with cfg.
func NewRetryingPlanner(next Planner, cfg RetryConfig, logger *slog.Logger) *RetryingPlanner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingPlanner{next: next, cfg: cfg, logger: logger}
}

// Complete implements Planner.
func (p *RetryingPlanner) Complete(ctx context.Context, system, user string) (string, error) {
	backoff := p.cfg.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		out, err := p.next.Complete(ctx, system, user)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == p.cfg.MaxAttempts {
			break
		}

		p.logger.Warn("planner call failed, retrying",
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * p.cfg.BackoffMultiplier)
		if p.cfg.MaxBackoff > 0 && backoff > p.cfg.MaxBackoff {
			backoff = p.cfg.MaxBackoff
		}
	}
	return "", lastErr
}
