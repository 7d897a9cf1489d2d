// Package storage provides expense and flag store implementations backed by
// an in-memory map or SQLite.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/service"
)

// MemoryStore keeps expenses and anomaly flags in process memory. Expenses
// are keyed by ID but iterated in insertion order so listings and detection
// runs are reproducible.
type MemoryStore struct {
	expenses map[string]model.Expense
	order    []string
	flags    []model.AnomalyFlag
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[string]model.Expense),
	}
}

// UpsertExpense inserts or replaces a single expense.
func (s *MemoryStore) UpsertExpense(_ context.Context, expense model.Expense) error {
	if expense.ID == "" {
		return fmt.Errorf("expense ID is required")
	}
	if err := expense.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(expense)
	return nil
}

// UpsertExpenses inserts or replaces a batch of expenses.
func (s *MemoryStore) UpsertExpenses(_ context.Context, expenses []model.Expense) error {
	for i := range expenses {
		if expenses[i].ID == "" {
			return fmt.Errorf("expense ID is required")
		}
		if err := expenses[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		s.upsertLocked(e)
	}
	return nil
}

func (s *MemoryStore) upsertLocked(expense model.Expense) {
	if _, exists := s.expenses[expense.ID]; !exists {
		s.order = append(s.order, expense.ID)
	}
	s.expenses[expense.ID] = expense
}

// GetExpense returns the expense with the given ID.
func (s *MemoryStore) GetExpense(_ context.Context, id string) (*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expense, ok := s.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	return &expense, nil
}

// DeleteExpense removes the expense with the given ID.
func (s *MemoryStore) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	delete(s.expenses, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListExpenses returns a snapshot copy of all expenses in insertion order.
func (s *MemoryStore) ListExpenses(_ context.Context) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.expenses[id])
	}
	return out, nil
}

// ListExpensePage returns one page of expenses. Pages are 1-based; a
// non-positive limit defaults to 50.
func (s *MemoryStore) ListExpensePage(ctx context.Context, page, limit int) (*service.ExpensePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	all, err := s.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return &service.ExpensePage{
		Expenses: all[start:end],
		Total:    len(all),
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// ReplaceFlags swaps the entire flag collection atomically.
func (s *MemoryStore) ReplaceFlags(_ context.Context, flags []model.AnomalyFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags = make([]model.AnomalyFlag, len(flags))
	copy(s.flags, flags)
	return nil
}

// ListFlags returns flags in creation order, optionally filtered by severity.
func (s *MemoryStore) ListFlags(_ context.Context, severity model.Severity) ([]model.AnomalyFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AnomalyFlag, 0, len(s.flags))
	for _, f := range s.flags {
		if severity != "" && f.Severity != severity {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// GetFlag returns the flag with the given ID.
func (s *MemoryStore) GetFlag(_ context.Context, id string) (*model.AnomalyFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.flags {
		if s.flags[i].ID == id {
			flag := s.flags[i]
			return &flag, nil
		}
	}
	return nil, fmt.Errorf("flag %s: %w", id, common.ErrNotFound)
}

// SetExplanation attaches an AI explanation to an existing flag.
func (s *MemoryStore) SetExplanation(_ context.Context, id, explanation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.flags {
		if s.flags[i].ID == id {
			s.flags[i].AIExplanation = explanation
			return nil
		}
	}
	return fmt.Errorf("flag %s: %w", id, common.ErrNotFound)
}
