package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("message: %w", ErrValidation), "validation"},
		{fmt.Errorf("session s1: %w", ErrNotFound), "not-found"},
		{ErrInvalidTransition, "invalid-transition"},
		{fmt.Errorf("%w: retrieval: dial tcp", ErrUpstream), "upstream-failure"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), tt.err.Error())
	}
}
