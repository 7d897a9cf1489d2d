package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/expensed-ai/expensed/internal/anomaly"
	"github.com/expensed-ai/expensed/internal/config"
	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/provider"
)

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Run anomaly detection over the stored expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := anomaly.NewEngine(store, store, provider.NewRegistry(cfg.Providers), slog.Default())
			flags, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			bySeverity := make(map[model.Severity]int)
			for _, f := range flags {
				bySeverity[f.Severity]++
			}

			cmd.Printf("Flagged %d expense(s): %d high, %d medium, %d low\n",
				len(flags),
				bySeverity[model.SeverityHigh],
				bySeverity[model.SeverityMedium],
				bySeverity[model.SeverityLow])
			for _, f := range flags {
				cmd.Printf("  [%s] %s %s $%.2f: %s\n",
					f.Severity, f.Kind, f.Expense.Vendor, f.Expense.Amount, f.RuleDetails)
			}
			return nil
		},
	}
}
