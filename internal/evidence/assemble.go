// Package evidence renders retrieved chunks into the planner's context block.
package evidence

import (
	"fmt"
	"strings"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Delimiter separates rendered chunks in the context block.
const Delimiter = "\n---\n"

// Assemble lists at most k chunks, in the order given, as "#<n> [<source>] <snippet>".
// Empty input or a non-positive k yields an empty block.
func Assemble(chunks []models.EvidenceChunk, k int) string {
	if k <= 0 || len(chunks) == 0 {
		return ""
	}
	if len(chunks) > k {
		chunks = chunks[:k]
	}

	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("#%d [%s] %s", i+1, c.Source, c.Snippet))
	}
	return strings.Join(parts, Delimiter)
}
