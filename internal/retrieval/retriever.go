// Package retrieval looks up evidence chunks for a chat message and indexes
// documents so later turns can find them.
package retrieval

import (
	"context"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// DefaultTopK is the number of chunks retrieved per chat turn.
const DefaultTopK = 6

// Retriever returns evidence chunks ranked by similarity to query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]models.EvidenceChunk, error)
}

// Indexer stores documents so they become retrievable.
type Indexer interface {
	Index(ctx context.Context, docs []models.Document) error
}

// Backend is both halves of a retrieval store.
type Backend interface {
	Retriever
	Indexer
	EnsureIndex(ctx context.Context) error
}

const unknownSource = "unknown"

// chunkFromPayload applies the payload conventions shared by every backend:
// the snippet is "text", falling back to "chunk_text"; the source is
// "source", falling back to the point id and then "unknown".
func chunkFromPayload(id string, score float64, payload map[string]string) (models.EvidenceChunk, bool) {
	snippet := payload["text"]
	if snippet == "" {
		snippet = payload["chunk_text"]
	}
	if snippet == "" {
		return models.EvidenceChunk{}, false
	}

	source := payload["source"]
	if source == "" {
		source = id
	}
	if source == "" {
		source = unknownSource
	}
	return models.EvidenceChunk{Source: source, Snippet: snippet, Score: score}, true
}
