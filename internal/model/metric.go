package model

import "time"

// RequestMetric is one row of per-attempt telemetry. Rows are append-only and
// never mutated after insertion; failed attempts carry zero cost and token
// counts.
type RequestMetric struct {
	Timestamp    time.Time `json:"timestamp"`
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	TaskType     TaskType  `json:"taskType"`
	LatencyMs    int64     `json:"latencyMs"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	CostUSD      float64   `json:"costUsd"`
	Success      bool      `json:"success"`
}

// ProviderStats aggregates every recorded attempt for one backend.
// P95LatencyMs uses nearest-rank indexing (floor(count*0.95)), not an
// interpolated percentile, so results stay comparable across deployments.
type ProviderStats struct {
	Provider      string  `json:"provider"`
	TotalRequests int     `json:"totalRequests"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	AvgCostUSD    float64 `json:"avgCostUsd"`
	SuccessRate   float64 `json:"successRate"`
	P95LatencyMs  int64   `json:"p95LatencyMs"`
}
