package ingest

import (
	"context"
	"fmt"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/retrieval"
)

// IndexSink writes turns into the retrieval index so later chat turns can
// retrieve earlier conversation as evidence.
type IndexSink struct {
	indexer retrieval.Indexer
}

func NewIndexSink(indexer retrieval.Indexer) *IndexSink {
	return &IndexSink{indexer: indexer}
}

func (s *IndexSink) Submit(ctx context.Context, sessionID string, turns []models.Turn) error {
	docs := make([]models.Document, 0, len(turns))
	for i, t := range turns {
		if t.Text == "" {
			continue
		}
		docs = append(docs, models.Document{
			ID:     fmt.Sprintf("%s-%d-%d", sessionID, t.Timestamp.UnixMilli(), i),
			Text:   t.Text,
			Source: fmt.Sprintf("chat:%s:%s", sessionID, t.Role),
		})
	}
	if len(docs) == 0 {
		return nil
	}
	return s.indexer.Index(ctx, docs)
}
