package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/store"
)

const testDim = 8

// fakeOllamaServer mimics the Ollama embedding API with deterministic vectors.
func fakeOllamaServer(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embed":
			calls.Add(1)
			var req struct {
				Input string `json:"input"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			h := sha256.Sum256([]byte(req.Input))
			vec := make([]float32, testDim)
			for i := range vec {
				vec[i] = float32(h[i]) / 255.0
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{vec}})
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaClientEmbed(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllamaServer(&calls)
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "nomic-embed-text")
	vec, err := c.Embed(context.Background(), "Offer at 520k")
	require.NoError(t, err)
	assert.Len(t, vec, testDim)
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestOllamaClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "missing").Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestCachedEmbedderHitsCache(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllamaServer(&calls)
	defer srv.Close()

	db, err := store.Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewCachedEmbedder(NewOllamaClient(srv.URL, "nomic-embed-text"), store.NewEmbeddingCacheStore(db), "nomic-embed-text", testDim, logger)

	first, err := e.Embed(context.Background(), "same text")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCachedEmbedderRejectsWrongDimension(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllamaServer(&calls)
	defer srv.Close()

	db, err := store.Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewCachedEmbedder(NewOllamaClient(srv.URL, "m"), store.NewEmbeddingCacheStore(db), "m", 768, logger)

	_, err = e.Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "dimension")
}

func TestCachedEmbedderFallsThroughOnCacheFailure(t *testing.T) {
	var calls atomic.Int32
	srv := fakeOllamaServer(&calls)
	defer srv.Close()

	db, err := store.Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewCachedEmbedder(NewOllamaClient(srv.URL, "m"), store.NewEmbeddingCacheStore(db), "m", testDim, logger)

	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vec, testDim)
	assert.EqualValues(t, 1, calls.Load())
}

func TestContentHashIsStable(t *testing.T) {
	assert.Equal(t, ContentHash("a"), ContentHash("a"))
	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))
	assert.Len(t, ContentHash("a"), 64)
}
