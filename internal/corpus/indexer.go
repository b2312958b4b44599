package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/retrieval"
)

// IndexOptions tunes IndexDocuments.
type IndexOptions struct {
	BatchSize   int
	Concurrency int
}

// IndexDocuments sends docs to the indexer in batches, several at a time.
// The first failing batch cancels the rest.
func IndexDocuments(ctx context.Context, indexer retrieval.Indexer, docs []models.Document, opts IndexOptions, logger *slog.Logger) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 16
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(docs); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(docs))
		batch := docs[start:end]
		g.Go(func() error {
			if err := indexer.Index(gctx, batch); err != nil {
				return fmt.Errorf("index batch %s..%s: %w", batch[0].ID, batch[len(batch)-1].ID, err)
			}
			logger.Info("indexed chunks", "count", len(batch), "first", batch[0].ID)
			return nil
		})
	}
	return g.Wait()
}
