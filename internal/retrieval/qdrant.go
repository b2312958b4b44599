package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/embedding"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/vectorstore"
)

// QdrantRetriever embeds the query and searches a Qdrant collection.
type QdrantRetriever struct {
	embedder    embedding.Embedder
	client      *vectorstore.QdrantClient
	collections *vectorstore.CollectionManager
	collection  string
}

func NewQdrantRetriever(embedder embedding.Embedder, client *vectorstore.QdrantClient, collection string) *QdrantRetriever {
	return &QdrantRetriever{
		embedder:    embedder,
		client:      client,
		collections: vectorstore.NewCollectionManager(client),
		collection:  collection,
	}
}

// EnsureIndex creates the collection if it is missing.
func (r *QdrantRetriever) EnsureIndex(ctx context.Context) error {
	return r.collections.Ensure(ctx, r.collection)
}

func (r *QdrantRetriever) Search(ctx context.Context, query string, topK int) ([]models.EvidenceChunk, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.client.Search(ctx, r.collection, vec, topK, 0)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.collection, err)
	}

	chunks := make([]models.EvidenceChunk, 0, len(results))
	for _, res := range results {
		if c, ok := chunkFromPayload(res.ID, res.Score, stringPayload(res.Payload)); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}

// Index embeds each document and upserts it. Qdrant only accepts UUID or
// integer point ids, so the document id is hashed into a UUID and kept in the
// payload as doc_id.
func (r *QdrantRetriever) Index(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := r.EnsureIndex(ctx); err != nil {
		return err
	}

	points := make([]vectorstore.Point, 0, len(docs))
	for _, doc := range docs {
		vec, err := r.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		points = append(points, vectorstore.Point{
			ID:     PointID(doc.ID),
			Vector: vec,
			Payload: map[string]any{
				"doc_id": doc.ID,
				"text":   doc.Text,
				"source": doc.Source,
			},
		})
	}

	if err := r.client.Upsert(ctx, r.collection, points); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// PointID maps a document id onto a stable UUID.
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

func stringPayload(p map[string]any) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
