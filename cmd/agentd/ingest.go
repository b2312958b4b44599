package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/corpus"
)

func newIngestCmd(e *env) *cobra.Command {
	var (
		manifest    string
		id          string
		text        string
		source      string
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index seed documents into the retrieval store",
		Example: `  agentd ingest --manifest corpus.yaml
  agentd ingest --id doc1 --source docs/intro.md --text "Agent uses retrieval; chunk size ~800 tokens..."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m *corpus.Manifest
			var err error
			switch {
			case manifest != "":
				m, err = corpus.LoadManifest(manifest)
			case id != "" && text != "":
				m = &corpus.Manifest{
					ChunkSize: corpus.DefaultChunkSize,
					Documents: []corpus.Entry{{ID: id, Source: source, Text: text}},
				}
			default:
				return errors.New("either --manifest or both --id and --text are required")
			}
			if err != nil {
				return err
			}
			return runIngest(cmd.Context(), e, m, corpus.IndexOptions{BatchSize: batchSize, Concurrency: concurrency})
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML corpus manifest")
	cmd.Flags().StringVar(&id, "id", "", "document id for a single inline document")
	cmd.Flags().StringVar(&text, "text", "", "document text for a single inline document")
	cmd.Flags().StringVar(&source, "source", "", "source label for a single inline document")
	cmd.Flags().IntVar(&batchSize, "batch-size", 16, "documents per index request")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "index requests in flight")
	return cmd
}

func runIngest(ctx context.Context, e *env, m *corpus.Manifest, opts corpus.IndexOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	comps, err := wireComponents(e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	docs, err := m.Documents()
	if err != nil {
		return err
	}
	if err := comps.backend.EnsureIndex(ctx); err != nil {
		return err
	}
	if err := corpus.IndexDocuments(ctx, comps.backend, docs, opts, e.logger); err != nil {
		e.logger.Error("ingest failed", "error", err)
		return err
	}
	e.logger.Info("ingest complete", "chunks", len(docs))
	return nil
}
