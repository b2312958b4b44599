// Package requestid carries the per-request correlation id through contexts.
package requestid

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

type ctxKey struct{}

// Header is the HTTP header used to propagate the id.
const Header = "X-Request-ID"

// New returns a fresh id.
func New() string {
	return shortuuid.New()
}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From extracts the id from ctx, or "" when none is set.
func From(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
