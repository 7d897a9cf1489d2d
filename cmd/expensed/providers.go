package main

import (
	"github.com/spf13/cobra"

	"github.com/expensed-ai/expensed/internal/config"
	"github.com/expensed-ai/expensed/internal/provider"
)

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show which AI backends are configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := provider.NewRegistry(config.Load().Providers)

			for _, status := range registry.Statuses() {
				if status.Available {
					cmd.Printf("%-10s available\n", status.Provider)
					continue
				}
				cmd.Printf("%-10s unavailable (%s)\n", status.Provider, status.Reason)
			}
			return nil
		},
	}
}
