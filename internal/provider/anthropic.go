package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
)

// anthropicClient implements Client for the Anthropic messages API.
type anthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
}

func newAnthropicClient(apiKey string) Client {
	return &anthropicClient{
		apiKey: apiKey,
		model:  "claude-3-5-haiku-20241022",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name returns the backend identifier.
func (c *anthropicClient) Name() string {
	return Anthropic
}

// EstimateCost prices a request in USD.
func (c *anthropicClient) EstimateCost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)/1000)*0.003 + (float64(outputTokens)/1000)*0.015
}

// ExtractExpenses parses request text into structured expenses.
func (c *anthropicClient) ExtractExpenses(ctx context.Context, text string, _ model.TaskType) (*ExtractionResult, error) {
	content, err := c.complete(ctx, extractionPrompt(text), 2048)
	if err != nil {
		return nil, err
	}
	return parseExtraction(content, text)
}

// ExplainAnomaly produces a short explanation for a flagged expense.
func (c *anthropicClient) ExplainAnomaly(ctx context.Context, expense model.Expense, recent []model.Expense) (string, error) {
	content, err := c.complete(ctx, anomalyPrompt(expense, recent), 512)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// EvaluatePolicy checks an expense against free-form policy text.
func (c *anthropicClient) EvaluatePolicy(ctx context.Context, expense model.Expense, policyText string) (*ComplianceEvaluation, error) {
	content, err := c.complete(ctx, policyPrompt(expense, policyText), 1024)
	if err != nil {
		return nil, err
	}
	return parseCompliance(content)
}

func (c *anthropicClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	requestBody := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (status %d): %s: %w", resp.StatusCode, string(body), common.ErrProviderFailure)
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return response.Content[0].Text, nil
}

// anthropicResponse represents the Anthropic messages API response.
type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
