package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/thirty-today/internal/config"
	"github.com/i474232898/thirty-today/internal/digest"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch GUARDIAN_KEY NYTIMES_KEY METEOSTAT_KEY",
		Short: "Run one aggregation and persist the document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := config.Credentials{
				GuardianAPIKey:  args[0],
				NYTimesAPIKey:   args[1],
				MeteostatAPIKey: args[2],
			}
			if err := creds.Validate(); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			st, closeStore, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			service := digest.NewService(st, newSources(sourceConfig(cfg, log), creds), log)
			doc, err := service.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("fetch: %w", err)
			}

			log.Info("document written", "backend", cfg.StoreBackend, "dates", len(doc))
			return nil
		},
	}
}
