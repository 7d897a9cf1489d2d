package router

import (
	"fmt"
	"strings"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/provider"
)

// routePair is a task type's static (primary, fallback) preference.
type routePair struct {
	primary  string
	fallback string
}

// routingTable maps each task type to its backend preference. Policy is
// data-driven: changing a route is a table edit, not a code path.
var routingTable = map[model.TaskType]routePair{
	model.TaskSimpleExtraction:   {primary: provider.Groq, fallback: provider.Cerebras},
	model.TaskComplexExtraction:  {primary: provider.Anthropic, fallback: provider.OpenAI},
	model.TaskComplianceCheck:    {primary: provider.OpenAI, fallback: provider.Anthropic},
	model.TaskAnomalyExplanation: {primary: provider.Anthropic, fallback: provider.Groq},
}

// rationale holds the static per-(backend, task) explanation phrases used in
// routing decisions.
var rationale = map[string]map[model.TaskType]string{
	provider.Groq: {
		model.TaskSimpleExtraction:   "lowest latency and cost for straightforward extraction",
		model.TaskComplexExtraction:  "fast processing with good accuracy",
		model.TaskComplianceCheck:    "fast compliance checks",
		model.TaskAnomalyExplanation: "quick anomaly explanations",
	},
	provider.Cerebras: {
		model.TaskSimpleExtraction:   "low-latency alternative for simple tasks",
		model.TaskComplexExtraction:  "fast processing fallback",
		model.TaskComplianceCheck:    "fast compliance fallback",
		model.TaskAnomalyExplanation: "quick explanation fallback",
	},
	provider.Anthropic: {
		model.TaskSimpleExtraction:   "high accuracy for receipt parsing",
		model.TaskComplexExtraction:  "highest accuracy for multi-line item parsing and ambiguous formatting",
		model.TaskComplianceCheck:    "strong reasoning for compliance evaluation",
		model.TaskAnomalyExplanation: "best reasoning for detailed anomaly analysis",
	},
	provider.OpenAI: {
		model.TaskSimpleExtraction:   "reliable receipt extraction",
		model.TaskComplexExtraction:  "strong structured data extraction",
		model.TaskComplianceCheck:    "native function calling for structured compliance evaluation",
		model.TaskAnomalyExplanation: "detailed anomaly reasoning",
	},
}

// SelectProvider resolves a task's backend. The primary is used if
// available, else the table fallback, else the first registered backend in
// registration order. An empty registry is a configuration error and aborts
// the request before any attempt. The decision's Fallback is populated only
// when the primary itself was chosen; a request already running on its
// fallback gets no second fallback.
func SelectProvider(complexity model.TaskComplexity, registry *provider.Registry) (model.RoutingDecision, error) {
	entry := routingTable[complexity.Type]

	var primary, fallback string
	if registry.Available(entry.primary) {
		primary = entry.primary
	}
	if registry.Available(entry.fallback) {
		fallback = entry.fallback
	}

	chosen := primary
	if chosen == "" {
		chosen = fallback
	}
	if chosen == "" {
		names := registry.Names()
		if len(names) > 0 {
			chosen = names[0]
		}
	}

	if chosen == "" {
		return model.RoutingDecision{}, common.ErrNoProviders
	}

	decision := model.RoutingDecision{
		Provider:   chosen,
		Reason:     buildReason(complexity, chosen),
		Complexity: complexity,
	}
	if chosen == primary {
		decision.Fallback = fallback
	}
	return decision, nil
}

func buildReason(complexity model.TaskComplexity, chosen string) string {
	phrase := rationale[chosen][complexity.Type]
	if phrase == "" {
		phrase = "general processing"
	}

	reason := fmt.Sprintf("Task classified as %s (score: %.2f). Routing to %s for %s.",
		complexity.Type, complexity.Score, chosen, phrase)
	if len(complexity.Signals) > 0 {
		reason += fmt.Sprintf(" Signals: %s.", strings.Join(complexity.Signals, ", "))
	}
	return reason
}
