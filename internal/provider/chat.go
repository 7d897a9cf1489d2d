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

// chatClient implements Client against an OpenAI-compatible chat completions
// API. OpenAI, Groq, and Cerebras all speak this protocol; only the base
// URL, model, and pricing differ.
type chatClient struct {
	httpClient  *http.Client
	name        string
	baseURL     string
	model       string
	apiKey      string
	inputPer1K  float64
	outputPer1K float64
	jsonMode    bool
}

func newChatClient(name, baseURL, chatModel, apiKey string, inputPer1K, outputPer1K float64) *chatClient {
	return &chatClient{
		name:        name,
		baseURL:     baseURL,
		model:       chatModel,
		apiKey:      apiKey,
		inputPer1K:  inputPer1K,
		outputPer1K: outputPer1K,
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

// newOpenAIClient creates the OpenAI backend.
func newOpenAIClient(apiKey string) Client {
	c := newChatClient(OpenAI, "https://api.openai.com/v1", "gpt-4o-mini", apiKey, 0.005, 0.015)
	c.jsonMode = true
	return c
}

// newGroqClient creates the Groq backend.
func newGroqClient(apiKey string) Client {
	return newChatClient(Groq, "https://api.groq.com/openai/v1", "llama-3.1-8b-instant", apiKey, 0.00005, 0.00008)
}

// newCerebrasClient creates the Cerebras backend.
func newCerebrasClient(apiKey string) Client {
	return newChatClient(Cerebras, "https://api.cerebras.ai/v1", "llama-3.3-70b", apiKey, 0.0001, 0.0001)
}

// Name returns the backend identifier.
func (c *chatClient) Name() string {
	return c.name
}

// EstimateCost prices a request in USD per the backend's 1k-token rates.
func (c *chatClient) EstimateCost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)/1000)*c.inputPer1K + (float64(outputTokens)/1000)*c.outputPer1K
}

// ExtractExpenses parses request text into structured expenses.
func (c *chatClient) ExtractExpenses(ctx context.Context, text string, _ model.TaskType) (*ExtractionResult, error) {
	content, err := c.complete(ctx, extractionPrompt(text), 2048, true)
	if err != nil {
		return nil, err
	}
	return parseExtraction(content, text)
}

// ExplainAnomaly produces a short explanation for a flagged expense.
func (c *chatClient) ExplainAnomaly(ctx context.Context, expense model.Expense, recent []model.Expense) (string, error) {
	content, err := c.complete(ctx, anomalyPrompt(expense, recent), 512, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// EvaluatePolicy checks an expense against free-form policy text.
func (c *chatClient) EvaluatePolicy(ctx context.Context, expense model.Expense, policyText string) (*ComplianceEvaluation, error) {
	content, err := c.complete(ctx, policyPrompt(expense, policyText), 1024, false)
	if err != nil {
		return nil, err
	}
	return parseCompliance(content)
}

func (c *chatClient) complete(ctx context.Context, prompt string, maxTokens int, wantJSON bool) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": maxTokens,
	}
	if wantJSON && c.jsonMode {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", fmt.Errorf("%s API error (status %d): %s: %w", c.name, resp.StatusCode, string(body), common.ErrProviderFailure)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

// chatResponse represents the OpenAI-compatible completion response.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
