package provider

import (
	"context"

	"github.com/expensed-ai/expensed/internal/model"
)

// Provider identifiers, in the registry's registration order.
const (
	Groq      = "groq"
	Cerebras  = "cerebras"
	Anthropic = "anthropic"
	OpenAI    = "openai"
)

// ExtractionResult is the structured output of an extraction call.
type ExtractionResult struct {
	RawText    string          `json:"rawText,omitempty"`
	Expenses   []model.Expense `json:"expenses"`
	Confidence float64         `json:"confidence"`
}

// ComplianceRule is one evaluated rule in a compliance verdict.
type ComplianceRule struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Reason   string `json:"reason"`
	Passed   bool   `json:"passed"`
}

// ComplianceEvaluation is a backend's verdict on an expense against a policy.
type ComplianceEvaluation struct {
	Status  string           `json:"status"` // pass, fail, or warning
	Summary string           `json:"summary"`
	Rules   []ComplianceRule `json:"rulesEvaluated"`
}

// Client is the capability contract implemented by each AI backend.
type Client interface {
	// Name returns the backend identifier.
	Name() string
	// ExtractExpenses parses request text into structured expenses.
	ExtractExpenses(ctx context.Context, text string, task model.TaskType) (*ExtractionResult, error)
	// ExplainAnomaly produces a short natural-language explanation for a
	// flagged expense given surrounding context.
	ExplainAnomaly(ctx context.Context, expense model.Expense, recent []model.Expense) (string, error)
	// EvaluatePolicy checks an expense against free-form policy text.
	EvaluatePolicy(ctx context.Context, expense model.Expense, policyText string) (*ComplianceEvaluation, error)
	// EstimateCost is the backend's pricing function over token counts.
	EstimateCost(inputTokens, outputTokens int) float64
}

// Config carries the API keys that determine which backends are available.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GroqAPIKey      string
	CerebrasAPIKey  string
}
