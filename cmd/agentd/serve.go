package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/api"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/chat"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/config"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/ingest"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/metrics"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/transcript"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(e)
		},
	}
}

func serve(e *env) error {
	cfg, logger := e.cfg, e.logger

	comps, err := wireComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire components", "error", err)
		return err
	}
	defer comps.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	comps.ensureIndex(startCtx, logger)
	cancel()

	planner, err := buildPlanner(cfg, logger)
	if err != nil {
		logger.Error("failed to build planner", "error", err)
		return err
	}

	m := metrics.New()
	registry := actions.NewMemoryRegistry()
	transcripts := transcript.NewStore(comps.db)

	// Ingestion sinks
	sinks := []ingest.Named{{Name: "transcript", Sink: transcripts}}
	if cfg.IngestToIndex {
		sinks = append(sinks, ingest.Named{Name: "index", Sink: ingest.NewIndexSink(comps.backend)})
	}
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = ingest.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats not available, turns will not be published", "error", err)
		} else {
			sinks = append(sinks, ingest.Named{Name: "nats", Sink: ingest.NewNATSSink(nc, cfg.NATSSubject)})
		}
	}
	submitter := ingest.NewSubmitter(ingest.Redact(ingest.NewFanOut(sinks...)), cfg.IngestTimeout, m, logger)

	chatSvc := chat.NewService(
		comps.backend, planner, registry, submitter,
		chat.Options{TopK: config.TopK, UpstreamTimeout: cfg.UpstreamTimeout},
		m, logger,
	)

	router := api.NewRouter(api.Deps{
		Chat:        chatSvc,
		Actions:     actions.NewService(registry, m, logger),
		Transcripts: transcripts,
		Health:      api.NewHealthHandler(comps.db, comps.ollama, comps.vectors, registry),
		Metrics:     m.Handler(),
	}, cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(cfg.UpstreamTimeout),
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("agent server starting",
			"addr", addr,
			"url", cfg.PublicURL(),
			"retrieval", cfg.RetrievalBackend,
			"planner", cfg.PlannerProvider,
			"sinks", len(sinks),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if err := submitter.Wait(ctx); err != nil {
		logger.Warn("pending ingestion abandoned", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logger.Warn("nats drain failed", "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// writeTimeout leaves room for a chat turn's two sequential upstream calls
// (retrieval then planning) plus the response write.
func writeTimeout(upstream time.Duration) time.Duration {
	return 2*upstream + 10*time.Second
}
