package model

import "time"

// Severity grades how suspicious a flagged expense is.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnomalyKind is the closed set of detection rules.
type AnomalyKind string

// Anomaly kinds, one per detection rule.
const (
	AnomalyDuplicate      AnomalyKind = "duplicate"
	AnomalyRoundNumber    AnomalyKind = "round_number"
	AnomalyWeekendSpike   AnomalyKind = "weekend_spike"
	AnomalyUnusualAmount  AnomalyKind = "unusual_amount"
	AnomalyFrequencySpike AnomalyKind = "frequency_spike"
)

// AnomalyFlag links one expense to one detected rule violation.
// A detection run replaces the whole flag collection; flags do not retain
// identity across runs.
type AnomalyFlag struct {
	CreatedAt     time.Time   `json:"createdAt"`
	ID            string      `json:"id"`
	ExpenseID     string      `json:"expenseId"`
	Kind          AnomalyKind `json:"type"`
	Severity      Severity    `json:"severity"`
	RuleDetails   string      `json:"ruleDetails"`
	AIExplanation string      `json:"aiExplanation,omitempty"`
	Expense       Expense     `json:"expense"`
	Confidence    float64     `json:"confidence"`
}
