package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/expensed-ai/expensed/internal/anomaly"
	"github.com/expensed-ai/expensed/internal/config"
	"github.com/expensed-ai/expensed/internal/metrics"
	"github.com/expensed-ai/expensed/internal/policy"
	"github.com/expensed-ai/expensed/internal/provider"
	"github.com/expensed-ai/expensed/internal/router"
	"github.com/expensed-ai/expensed/internal/seed"
	"github.com/expensed-ai/expensed/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := slog.Default()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			withSeed, _ := cmd.Flags().GetBool("seed")
			if withSeed {
				count, err := seed.Load(cmd.Context(), store)
				if err != nil {
					return err
				}
				logger.Info("seeded sample expenses", "count", count)
			}

			registry := provider.NewRegistry(cfg.Providers)
			if registry.Len() == 0 {
				logger.Warn("no AI providers configured; extraction requests will fail")
			}

			metricStore := metrics.NewStore()
			deps := server.Dependencies{
				Orchestrator: router.NewOrchestrator(registry, store, metricStore, logger),
				Anomalies:    anomaly.NewEngine(store, store, registry, logger),
				Policy:       policy.NewEngine(registry, logger),
				Registry:     registry,
				Expenses:     store,
				Flags:        store,
				Metrics:      metricStore,
			}

			api := server.New(logger, server.Config{
				Addr:            cfg.Addr,
				ShutdownTimeout: 10 * time.Second,
				Dependencies:    deps,
			})
			return api.Start()
		},
	}

	cmd.Flags().Bool("seed", false, "load the demo expense dataset on startup")
	return cmd
}
