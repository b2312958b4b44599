package retrieval

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/embedding"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/vectorstore"
)

// ChromemRetriever serves retrieval from the in-process chromem store.
type ChromemRetriever struct {
	store      *vectorstore.ChromemStore
	collection string
}

func NewChromemRetriever(store *vectorstore.ChromemStore, collection string) *ChromemRetriever {
	return &ChromemRetriever{store: store, collection: collection}
}

// EmbeddingFunc adapts an Embedder to chromem's embedding callback.
func EmbeddingFunc(e embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.Embed(ctx, text)
	}
}

func (r *ChromemRetriever) EnsureIndex(ctx context.Context) error {
	_, err := r.store.EnsureCollection(r.collection)
	return err
}

func (r *ChromemRetriever) Search(ctx context.Context, query string, topK int) ([]models.EvidenceChunk, error) {
	results, err := r.store.Query(ctx, r.collection, query, topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.collection, err)
	}

	chunks := make([]models.EvidenceChunk, 0, len(results))
	for _, res := range results {
		payload := map[string]string{"text": res.Content}
		for k, v := range res.Metadata {
			payload[k] = v
		}
		if c, ok := chunkFromPayload(res.ID, float64(res.Score), payload); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}

func (r *ChromemRetriever) Index(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		batch = append(batch, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Text,
			Metadata: map[string]string{"source": doc.Source},
		})
	}
	return r.store.Upsert(ctx, r.collection, batch)
}
