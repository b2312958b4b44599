package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemResult is a single hit from the in-process store.
type ChromemResult struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float32
}

// ChromemStore wraps chromem-go with disk persistence under dataDir. chromem
// collections are safe for concurrent use, so queries never wait on an
// in-flight upsert's embedding calls.
type ChromemStore struct {
	db      *chromem.DB
	embedFn chromem.EmbeddingFunc
}

// NewChromemStore creates (or opens) the persistent store at dataDir. An empty
// dataDir keeps everything in memory.
func NewChromemStore(dataDir string, embedFn chromem.EmbeddingFunc) (*ChromemStore, error) {
	if dataDir == "" {
		return &ChromemStore{db: chromem.NewDB(), embedFn: embedFn}, nil
	}

	dir := filepath.Clean(dataDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create vectorstore dir: %w", err)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vectorstore: %w", err)
	}
	return &ChromemStore{db: db, embedFn: embedFn}, nil
}

// EnsureCollection returns (or creates) the named collection.
func (s *ChromemStore) EnsureCollection(name string) (*chromem.Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, s.embedFn)
	if err != nil {
		return nil, fmt.Errorf("create vector collection %s: %w", name, err)
	}
	return col, nil
}

// Upsert indexes (or re-indexes) documents in a collection.
func (s *ChromemStore) Upsert(ctx context.Context, collection string, docs []chromem.Document) error {
	col, err := s.EnsureCollection(collection)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("add document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Query returns up to k documents most similar to text.
func (s *ChromemStore) Query(ctx context.Context, collection, text string, k int) ([]ChromemResult, error) {
	col, err := s.EnsureCollection(collection)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}

	out := make([]ChromemResult, 0, len(results))
	for _, r := range results {
		out = append(out, ChromemResult{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Score:    r.Similarity,
		})
	}
	return out, nil
}

// Count returns the number of documents in a collection.
func (s *ChromemStore) Count(collection string) (int, error) {
	col, err := s.EnsureCollection(collection)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}
