package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/provider"
	"github.com/expensed-ai/expensed/internal/service"
)

// Engine runs detection against the live stores and enriches flags with AI
// explanations when a backend is available.
type Engine struct {
	expenses service.ExpenseStore
	flags    service.FlagStore
	registry *provider.Registry
	logger   *slog.Logger
}

// NewEngine wires the engine to its stores and the provider registry.
func NewEngine(expenses service.ExpenseStore, flags service.FlagStore, registry *provider.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		expenses: expenses,
		flags:    flags,
		registry: registry,
		logger:   logger,
	}
}

// Run takes a snapshot of the expense collection, detects anomalies, and
// atomically replaces the flag collection with the result. Flags from prior
// runs do not survive.
func (e *Engine) Run(ctx context.Context) ([]model.AnomalyFlag, error) {
	snapshot, err := e.expenses.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot expenses: %w", err)
	}

	flags := Detect(snapshot)
	if err := e.flags.ReplaceFlags(ctx, flags); err != nil {
		return nil, fmt.Errorf("failed to store flags: %w", err)
	}

	e.logger.Info("detection run complete",
		"expenses", len(snapshot),
		"flags", len(flags))
	return flags, nil
}

// Explain produces a human-readable narrative for one flag, preferring an
// available AI backend and falling back to a deterministic template built
// from the rule's kind and details. It returns an error only when the flag
// does not exist; enrichment failures are always recovered locally.
func (e *Engine) Explain(ctx context.Context, flagID string) (string, error) {
	flag, err := e.flags.GetFlag(ctx, flagID)
	if err != nil {
		return "", err
	}

	explanation := e.explain(ctx, flag)
	if err := e.flags.SetExplanation(ctx, flagID, explanation); err != nil {
		e.logger.Warn("failed to persist explanation", "flag_id", flagID, "error", err)
	}
	return explanation, nil
}

func (e *Engine) explain(ctx context.Context, flag *model.AnomalyFlag) string {
	kind := strings.ReplaceAll(string(flag.Kind), "_", " ")

	client, ok := e.registry.FirstAvailable("")
	if !ok {
		return fmt.Sprintf("This expense was flagged for %s: %s. No AI provider is available for detailed analysis.",
			kind, flag.RuleDetails)
	}

	recent, err := e.expenses.ListExpenses(ctx)
	if err != nil {
		e.logger.Warn("failed to load context expenses", "error", err)
		recent = nil
	}

	explanation, err := client.ExplainAnomaly(ctx, flag.Expense, recent)
	if err != nil {
		e.logger.Warn("AI explanation failed", "provider", client.Name(), "error", err)
		return fmt.Sprintf("This expense was flagged for %s: %s", kind, flag.RuleDetails)
	}
	return explanation
}
