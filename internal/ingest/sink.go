// Package ingest delivers completed chat turns to downstream sinks without
// holding up the chat reply.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/privacy"
)

// Sink receives the turns of one chat exchange.
type Sink interface {
	Submit(ctx context.Context, sessionID string, turns []models.Turn) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sessionID string, turns []models.Turn) error

func (f SinkFunc) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	return f(ctx, sessionID, turns)
}

// Redact wraps next so it only ever sees turns with <private> blocks
// removed. A batch left empty is not forwarded.
func Redact(next Sink) Sink {
	return SinkFunc(func(ctx context.Context, sessionID string, turns []models.Turn) error {
		filtered := privacy.FilterTurns(turns)
		if len(filtered) == 0 {
			return nil
		}
		return next.Submit(ctx, sessionID, filtered)
	})
}

// SinkError names the sink that failed.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Named pairs a sink with the label used in logs and metrics.
type Named struct {
	Name string
	Sink Sink
}

// FanOut delivers every submission to all of its sinks concurrently. One
// sink failing does not stop the others.
type FanOut struct {
	sinks []Named
}

func NewFanOut(sinks ...Named) *FanOut {
	return &FanOut{sinks: sinks}
}

// Len returns the number of sinks.
func (f *FanOut) Len() int {
	return len(f.sinks)
}

func (f *FanOut) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	errs := make([]error, len(f.sinks))

	var g errgroup.Group
	for i, n := range f.sinks {
		g.Go(func() error {
			if err := n.Sink.Submit(ctx, sessionID, turns); err != nil {
				errs[i] = &SinkError{Sink: n.Name, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// FailedSinks lists the sink names recorded in err.
func FailedSinks(err error) []string {
	if err == nil {
		return nil
	}

	var names []string
	var walk func(error)
	walk = func(e error) {
		var se *SinkError
		if errors.As(e, &se) {
			if joined, ok := e.(interface{ Unwrap() []error }); ok {
				for _, inner := range joined.Unwrap() {
					walk(inner)
				}
				return
			}
			names = append(names, se.Sink)
		}
	}
	walk(err)
	return names
}
