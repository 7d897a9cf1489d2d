package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/provider"
	"github.com/expensed-ai/expensed/internal/service"
)

// outputTokenEstimate is a hardcoded placeholder for the response size used
// in cost estimation: the true output size is unknown until the call
// returns. Downstream cost dashboards depend on its current scale, so keep
// it even though it is an approximation.
const outputTokenEstimate = 500

// MetricRecorder receives one row per backend attempt.
type MetricRecorder interface {
	Append(metric model.RequestMetric)
}

// Request is one document-processing request entering the orchestrator.
type Request struct {
	Text     string
	FileName string
	Hint     model.TaskType
	FileSize int64
}

// Result is what the caller sees after a request completes.
type Result struct {
	Result       *provider.ExtractionResult `json:"result"`
	Provider     string                     `json:"provider"`
	Decision     model.RoutingDecision      `json:"decision"`
	LatencyMs    int64                      `json:"latencyMs"`
	CostUSD      float64                    `json:"costUsd"`
	UsedFallback bool                       `json:"usedFallback,omitempty"`
}

// Orchestrator drives a request end to end: classify, route, attempt the
// primary backend, and on failure make exactly one fallback attempt. Every
// attempt appends one metric row. There is no retry beyond the fallback and
// no circuit breaking; each request re-evaluates availability fresh.
type Orchestrator struct {
	registry *provider.Registry
	expenses service.ExpenseStore
	metrics  MetricRecorder
	logger   *slog.Logger
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(registry *provider.Registry, expenses service.ExpenseStore, metrics MetricRecorder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry: registry,
		expenses: expenses,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute runs one request. The caller's context bounds every backend call;
// a timeout is treated the same as a failure and triggers the fallback.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Result, error) {
	complexity := ClassifyTask(ClassifyInput{
		Text:     req.Text,
		FileName: req.FileName,
		FileSize: req.FileSize,
		Hint:     req.Hint,
	})

	decision, err := SelectProvider(complexity, o.registry)
	if err != nil {
		return nil, err
	}

	o.logger.Info("routing request",
		"task_type", complexity.Type,
		"score", complexity.Score,
		"provider", decision.Provider,
		"fallback", decision.Fallback)

	result, latency, cost, err := o.attempt(ctx, decision.Provider, req.Text, complexity.Type)
	if err == nil {
		return &Result{
			Provider:  decision.Provider,
			Result:    result,
			Decision:  decision,
			LatencyMs: latency,
			CostUSD:   cost,
		}, nil
	}

	o.logger.Warn("primary attempt failed",
		"provider", decision.Provider,
		"error", err)

	if decision.Fallback == "" || decision.Fallback == decision.Provider || !o.registry.Available(decision.Fallback) {
		return nil, err
	}

	fbResult, fbLatency, fbCost, fbErr := o.attempt(ctx, decision.Fallback, req.Text, complexity.Type)
	if fbErr != nil {
		o.logger.Warn("fallback attempt failed",
			"provider", decision.Fallback,
			"error", fbErr)
		// The primary error is what the caller sees.
		return nil, err
	}

	return &Result{
		Provider:     decision.Fallback,
		Result:       fbResult,
		Decision:     decision,
		UsedFallback: true,
		LatencyMs:    fbLatency,
		CostUSD:      fbCost,
	}, nil
}

// attempt invokes one backend and always appends exactly one metric row,
// success or failure. Failures record zero cost and token counts.
func (o *Orchestrator) attempt(ctx context.Context, name, text string, task model.TaskType) (*provider.ExtractionResult, int64, float64, error) {
	client, ok := o.registry.Get(name)
	if !ok {
		return nil, 0, 0, fmt.Errorf("provider %s is not registered", name)
	}

	start := time.Now()
	result, err := client.ExtractExpenses(ctx, text, task)
	latency := time.Since(start).Milliseconds()

	// Output the store rejects counts as a failed attempt, the same as an
	// invocation error. The metric row is written only once the attempt's
	// outcome is settled.
	if err == nil {
		err = o.persistExpenses(ctx, result.Expenses)
	}
	if err != nil {
		o.metrics.Append(model.RequestMetric{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Provider:  name,
			TaskType:  task,
			LatencyMs: latency,
			Success:   false,
		})
		return nil, latency, 0, err
	}

	inputTokens := len(text) / 4
	cost := client.EstimateCost(inputTokens, outputTokenEstimate)

	o.metrics.Append(model.RequestMetric{
		ID:           uuid.NewString(),
		Timestamp:    time.Now(),
		Provider:     name,
		TaskType:     task,
		LatencyMs:    latency,
		CostUSD:      cost,
		InputTokens:  inputTokens,
		OutputTokens: outputTokenEstimate,
		Success:      true,
	})
	return result, latency, cost, nil
}

// persistExpenses assigns IDs to freshly extracted expenses and upserts
// them into the collection.
func (o *Orchestrator) persistExpenses(ctx context.Context, expenses []model.Expense) error {
	for i := range expenses {
		if expenses[i].ID == "" {
			expenses[i].ID = uuid.NewString()
		}
	}
	if len(expenses) == 0 {
		return nil
	}
	if err := o.expenses.UpsertExpenses(ctx, expenses); err != nil {
		return fmt.Errorf("failed to store extracted expenses: %w", err)
	}
	return nil
}
