package main

import (
	"github.com/spf13/cobra"
)

func newCreateIndexCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create-index",
		Short: "Create the retrieval collection if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := wireComponents(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			if err := comps.backend.EnsureIndex(cmd.Context()); err != nil {
				e.logger.Error("create index failed", "error", err)
				return err
			}
			e.logger.Info("index ready",
				"backend", e.cfg.RetrievalBackend,
				"collection", e.cfg.QdrantCollection,
			)
			return nil
		},
	}
}
