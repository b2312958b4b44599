package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/api"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/config"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/embedding"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/llm"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/retrieval"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/store"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/vectorstore"
)

// components are the pieces shared by every subcommand.
type components struct {
	db       *store.DB
	ollama   *embedding.OllamaClient
	embedder embedding.Embedder
	backend  retrieval.Backend
	// vectors is nil for the in-process backend.
	vectors api.HealthChecker
}

func (c *components) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

func wireComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ollama := embedding.NewOllamaClient(cfg.OllamaBaseURL, cfg.EmbeddingModel)
	embedder := embedding.NewCachedEmbedder(ollama, store.NewEmbeddingCacheStore(db), cfg.EmbeddingModel, cfg.EmbeddingDim, logger)

	c := &components{db: db, ollama: ollama, embedder: embedder}

	switch cfg.RetrievalBackend {
	case config.BackendChromem:
		vs, err := vectorstore.NewChromemStore(cfg.ChromemDir, retrieval.EmbeddingFunc(embedder))
		if err != nil {
			db.Close()
			return nil, err
		}
		c.backend = retrieval.NewChromemRetriever(vs, cfg.QdrantCollection)
	default:
		qdrant := vectorstore.NewQdrantClient(cfg.QdrantURL, cfg.EmbeddingDim)
		c.backend = retrieval.NewQdrantRetriever(embedder, qdrant, cfg.QdrantCollection)
		c.vectors = qdrant
	}
	return c, nil
}

// ensureIndex creates the retrieval collection, warning instead of failing
// when the vector store is not up yet.
func (c *components) ensureIndex(ctx context.Context, logger *slog.Logger) {
	if c.vectors != nil {
		if err := c.vectors.HealthCheck(ctx); err != nil {
			logger.Warn("vector store not available at startup, will retry on first use", "error", err)
			return
		}
	}
	if err := c.backend.EnsureIndex(ctx); err != nil {
		logger.Warn("failed to create retrieval collection", "error", err)
	}
}

func buildPlanner(cfg *config.Config, logger *slog.Logger) (llm.Planner, error) {
	var base llm.Planner
	switch cfg.PlannerProvider {
	case config.ProviderAnthropic:
		p, err := llm.NewAnthropicPlanner(cfg.PlannerModel, cfg.AnthropicAPIKey, cfg.PlannerMaxTokens)
		if err != nil {
			return nil, err
		}
		base = p
	case config.ProviderOpenAI:
		p, err := llm.NewOpenAIPlanner(cfg.PlannerModel, cfg.OpenAIAPIKey, cfg.PlannerMaxTokens)
		if err != nil {
			return nil, err
		}
		base = p
	default:
		p, err := llm.NewOllamaPlanner(cfg.OllamaBaseURL, cfg.PlannerModel, cfg.PlannerMaxTokens)
		if err != nil {
			return nil, err
		}
		base = p
	}
	return llm.NewRetryingPlanner(base, llm.DefaultRetryConfig(), logger), nil
}
