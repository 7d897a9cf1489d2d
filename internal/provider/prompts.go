package provider

import (
	"encoding/json"
	"fmt"

	"github.com/expensed-ai/expensed/internal/model"
)

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract expense data from the following text. Return valid JSON only with this exact shape:
{"expenses": [{"vendor": "...", "amount": 0.00, "currency": "USD", "category": "meals|travel|software|office_supplies|equipment|marketing|professional_services|utilities|other", "description": "...", "date": "YYYY-MM-DD", "submittedBy": "Unknown"}], "confidence": 0.95}

Text:
%s`, text)
}

func anomalyPrompt(expense model.Expense, recent []model.Expense) string {
	if len(recent) > 10 {
		recent = recent[:10]
	}
	expenseJSON, _ := json.Marshal(expense)
	contextJSON, _ := json.Marshal(recent)
	return fmt.Sprintf(`You are a financial auditor. Analyze this flagged expense and explain why it is suspicious.

Flagged expense: %s

Recent expenses for context: %s

Provide a concise 2-3 sentence explanation of why this expense is suspicious, from an auditing perspective.`, expenseJSON, contextJSON)
}

func policyPrompt(expense model.Expense, policyText string) string {
	expenseJSON, _ := json.Marshal(expense)
	return fmt.Sprintf(`Evaluate this expense against the company policy. Return valid JSON only.

Expense: %s

Policy:
%s

Return JSON with this shape:
{"status": "pass|fail|warning", "rulesEvaluated": [{"ruleId": "rule_1", "ruleName": "...", "passed": true, "reason": "..."}], "summary": "One sentence summary"}`, expenseJSON, policyText)
}
