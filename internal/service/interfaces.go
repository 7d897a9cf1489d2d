// Package service defines the interfaces for the application's stores.
package service

import (
	"context"

	"github.com/expensed-ai/expensed/internal/model"
)

// ExpensePage is one page of a paginated expense listing.
type ExpensePage struct {
	Expenses []model.Expense
	Total    int
}

// ExpenseStore is the contract for the expense collection. It is the single
// source of truth read by both the orchestrator (writes newly extracted
// expenses) and the anomaly engine (read-only scan). Implementations must
// support concurrent upserts and reads.
type ExpenseStore interface {
	UpsertExpense(ctx context.Context, expense model.Expense) error
	UpsertExpenses(ctx context.Context, expenses []model.Expense) error
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	// ListExpenses returns a snapshot copy of the full collection in
	// insertion order; callers may iterate it while writers proceed.
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	ListExpensePage(ctx context.Context, page, limit int) (*ExpensePage, error)
	Close() error
}

// Store combines the expense and flag collections; both provided
// implementations (memory and SQLite) back the two with one lifecycle.
type Store interface {
	ExpenseStore
	FlagStore
}

// FlagStore holds the anomaly flags produced by the most recent detection
// run. ReplaceFlags swaps the whole collection atomically.
type FlagStore interface {
	ReplaceFlags(ctx context.Context, flags []model.AnomalyFlag) error
	// ListFlags returns flags in creation order, optionally filtered by
	// severity (empty string means no filter).
	ListFlags(ctx context.Context, severity model.Severity) ([]model.AnomalyFlag, error)
	GetFlag(ctx context.Context, id string) (*model.AnomalyFlag, error)
	// SetExplanation attaches an AI-derived explanation to an existing flag.
	SetExplanation(ctx context.Context, id, explanation string) error
}
