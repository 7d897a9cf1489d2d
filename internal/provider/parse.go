package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
)

// cleanMarkdownWrapper strips ```json fences some models insist on emitting.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// extractJSONObject returns the outermost {...} span of the content, for
// models that wrap the JSON in prose.
func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// expensePayload is the wire shape backends are prompted to return.
type expensePayload struct {
	Vendor      string  `json:"vendor"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	SubmittedBy string  `json:"submittedBy"`
	Amount      float64 `json:"amount"`
}

func (p expensePayload) toModel() model.Expense {
	e := model.Expense{
		Vendor:      p.Vendor,
		Currency:    p.Currency,
		Category:    model.Category(p.Category),
		Description: p.Description,
		SubmittedBy: p.SubmittedBy,
		Amount:      p.Amount,
	}
	if date, err := time.Parse("2006-01-02", p.Date); err == nil {
		e.Date = date
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}
	if !e.Category.IsValid() {
		e.Category = model.CategoryOther
	}
	return e
}

// parseExtraction parses a backend's extraction response into a result.
// Any failure to locate or decode the JSON is a malformed-response error,
// which the orchestrator treats the same as an invocation failure.
func parseExtraction(content, rawInput string) (*ExtractionResult, error) {
	content = cleanMarkdownWrapper(content)
	jsonText, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in extraction response: %w", common.ErrMalformedResponse)
	}

	var payload struct {
		Expenses   []expensePayload `json:"expenses"`
		Confidence float64          `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w: %v", common.ErrMalformedResponse, err)
	}

	result := &ExtractionResult{
		RawText:    rawInput,
		Expenses:   make([]model.Expense, 0, len(payload.Expenses)),
		Confidence: payload.Confidence,
	}
	if result.Confidence == 0 {
		result.Confidence = 0.8
	}
	for _, p := range payload.Expenses {
		result.Expenses = append(result.Expenses, p.toModel())
	}
	return result, nil
}

// parseCompliance parses a backend's policy-evaluation response.
func parseCompliance(content string) (*ComplianceEvaluation, error) {
	content = cleanMarkdownWrapper(content)
	jsonText, ok := extractJSONObject(content)
	if !ok {
		return &ComplianceEvaluation{Status: "warning", Summary: "Could not parse evaluation"}, nil
	}

	var eval ComplianceEvaluation
	if err := json.Unmarshal([]byte(jsonText), &eval); err != nil {
		return nil, fmt.Errorf("failed to parse compliance response: %w: %v", common.ErrMalformedResponse, err)
	}
	if eval.Status == "" {
		eval.Status = "warning"
	}
	return &eval, nil
}
