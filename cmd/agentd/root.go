package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/config"
)

// env is populated before any subcommand runs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "agentd",
		Short:         "Planning agent backend with human approval of proposed actions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				newLogger("info").Error("failed to load config", "error", err)
				return err
			}
			e.cfg = cfg
			e.logger = newLogger(cfg.LogLevel)
			slog.SetDefault(e.logger)
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(e),
		newIngestCmd(e),
		newCreateIndexCmd(e),
	)
	return rootCmd
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
