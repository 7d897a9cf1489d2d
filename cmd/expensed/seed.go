package main

import (
	"github.com/spf13/cobra"

	"github.com/expensed-ai/expensed/internal/config"
	"github.com/expensed-ai/expensed/internal/seed"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo expense dataset into storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			count, err := seed.Load(cmd.Context(), store)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded %d sample expenses\n", count)
			return nil
		},
	}
}
