// Package policy parses free-form expense policy text and evaluates
// expenses against it. Both operations are pass-throughs to an AI backend
// with deterministic local fallbacks; no compliance logic lives here.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/provider"
)

// Rule is one structured constraint parsed from policy text.
type Rule struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Constraint string `json:"constraint"`
}

// ComplianceResult is a policy verdict for one expense.
type ComplianceResult struct {
	ExpenseID string                    `json:"expenseId"`
	Status    string                    `json:"status"`
	Summary   string                    `json:"summary"`
	Rules     []provider.ComplianceRule `json:"rulesEvaluated"`
}

// Engine holds the active policy text and its parsed rules.
type Engine struct {
	registry   *provider.Registry
	logger     *slog.Logger
	policyText string
	rules      []Rule
	mu         sync.RWMutex
}

// NewEngine creates a policy engine backed by the provider registry.
func NewEngine(registry *provider.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// SetPolicy stores new policy text and parses it into rules.
func (e *Engine) SetPolicy(ctx context.Context, policyText string) []Rule {
	rules := e.parse(ctx, policyText)

	e.mu.Lock()
	e.policyText = policyText
	e.rules = rules
	e.mu.Unlock()

	return rules
}

// Policy returns the active policy text and parsed rules.
func (e *Engine) Policy() (string, []Rule) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	return e.policyText, rules
}

// parse extracts structured rules from policy text, falling back to a plain
// bullet-list scan when no backend is available or the call fails.
func (e *Engine) parse(ctx context.Context, policyText string) []Rule {
	client, ok := e.registry.FirstAvailable("")
	if !ok {
		return parseBullets(policyText)
	}

	prompt := fmt.Sprintf("Parse the following policy text into structured rules. For each rule, identify the category it applies to and the constraint. Return your response as a JSON array of rules.\n\nPolicy:\n%s", policyText)
	eval, err := client.EvaluatePolicy(ctx, model.Expense{Currency: "USD", Category: model.CategoryOther, Description: "Policy parse request", Vendor: "policy"}, prompt)
	if err != nil || len(eval.Rules) == 0 {
		if err != nil {
			e.logger.Warn("policy parse via backend failed", "error", err)
		}
		return parseBullets(policyText)
	}

	rules := make([]Rule, 0, len(eval.Rules))
	for i, r := range eval.Rules {
		rule := Rule{ID: r.RuleID, Category: "all", Constraint: r.RuleName}
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule_%d", i+1)
		}
		if rule.Constraint == "" {
			rule.Constraint = r.Reason
		}
		rules = append(rules, rule)
	}
	return rules
}

// parseBullets is the deterministic fallback parser: one rule per bullet
// line.
func parseBullets(policyText string) []Rule {
	var rules []Rule
	for _, line := range strings.Split(policyText, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "*") {
			continue
		}
		constraint := strings.TrimSpace(strings.TrimLeft(trimmed, "-* "))
		rules = append(rules, Rule{
			ID:         fmt.Sprintf("rule_%d", len(rules)+1),
			Category:   "all",
			Constraint: constraint,
		})
	}
	return rules
}

// Evaluate checks one expense against the active policy. OpenAI is preferred
// for its structured function calling; any available backend serves
// otherwise. Backend failures degrade to a warning verdict, never an error.
func (e *Engine) Evaluate(ctx context.Context, expense model.Expense) ComplianceResult {
	e.mu.RLock()
	policyText := e.policyText
	e.mu.RUnlock()

	client, ok := e.registry.FirstAvailable(provider.OpenAI)
	if !ok {
		return ComplianceResult{
			ExpenseID: expense.ID,
			Status:    "warning",
			Summary:   "No AI provider available for policy evaluation.",
		}
	}

	eval, err := client.EvaluatePolicy(ctx, expense, policyText)
	if err != nil {
		e.logger.Warn("policy evaluation failed", "provider", client.Name(), "error", err)
		return ComplianceResult{
			ExpenseID: expense.ID,
			Status:    "warning",
			Summary:   "Error evaluating policy compliance.",
		}
	}

	return ComplianceResult{
		ExpenseID: expense.ID,
		Status:    eval.Status,
		Summary:   eval.Summary,
		Rules:     eval.Rules,
	}
}
