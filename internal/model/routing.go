package model

// TaskType is the closed classification of a request's processing need.
type TaskType string

// Task types. Only the extraction types are reachable through heuristic
// classification; the others require an explicit override.
const (
	TaskSimpleExtraction   TaskType = "simple_extraction"
	TaskComplexExtraction  TaskType = "complex_extraction"
	TaskComplianceCheck    TaskType = "compliance_check"
	TaskAnomalyExplanation TaskType = "anomaly_explanation"
)

// IsValid reports whether t is a known task type.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskSimpleExtraction, TaskComplexExtraction, TaskComplianceCheck, TaskAnomalyExplanation:
		return true
	}
	return false
}

// TaskComplexity is the classifier's verdict for one request. It is computed
// per request and never persisted. The score is additive and unbounded above
// 1.0; Signals records the human-readable reasons it accumulated.
type TaskComplexity struct {
	Type    TaskType `json:"type"`
	Signals []string `json:"signals"`
	Score   float64  `json:"score"`
}

// RoutingDecision records which backend a request was routed to and why.
// Fallback is populated only when the chosen backend is the primary for the
// task type; if the primary was unavailable, no further fallback is offered.
type RoutingDecision struct {
	Provider   string         `json:"provider"`
	Reason     string         `json:"reason"`
	Fallback   string         `json:"fallback,omitempty"`
	Complexity TaskComplexity `json:"complexity"`
}
