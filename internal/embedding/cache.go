package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/store"
)

// CachedEmbedder wraps an Embedder with content-hash caching via SQLite.
type CachedEmbedder struct {
	client Embedder
	cache  *store.EmbeddingCacheStore
	model  string
	dim    int
	logger *slog.Logger
}

func NewCachedEmbedder(client Embedder, cache *store.EmbeddingCacheStore, model string, dim int, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		client: client,
		cache:  cache,
		model:  model,
		dim:    dim,
		logger: logger,
	}
}

// Embed returns the embedding for text, using cache when available.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)

	entry, err := e.cache.Get(ctx, hash)
	if err != nil {
		e.logger.Warn("embedding cache read failed", "error", err)
		entry = nil
	}
	if entry != nil && entry.Model == e.model && entry.Dimension == e.dim {
		return store.BytesToFloat32(entry.Embedding), nil
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension %d, want %d", len(vec), e.dim)
	}

	cacheEntry := &models.EmbeddingCacheEntry{
		ContentHash: hash,
		Embedding:   store.Float32ToBytes(vec),
		Dimension:   e.dim,
		Model:       e.model,
	}
	if err := e.cache.Put(ctx, cacheEntry); err != nil {
		// Non-fatal: the vector is still usable
		e.logger.Warn("embedding cache write failed", "error", err)
	}

	return vec, nil
}

// ContentHash computes a SHA-256 hash of text content.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}
