// Package apperr defines the error taxonomy shared by the service layers.
package apperr

import "errors"

var (
	// ErrValidation marks malformed or missing caller input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned for an unknown session or proposal.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a decision targets a terminal action.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUpstream wraps retrieval or planning collaborator failures, timeouts included.
	ErrUpstream = errors.New("upstream failure")
)

// Code returns the wire name of err's taxonomy member, or "internal".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid-transition"
	case errors.Is(err, ErrUpstream):
		return "upstream-failure"
	}
	return "internal"
}
