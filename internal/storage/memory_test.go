package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
)

func testExpense(id string, amount float64) model.Expense {
	return model.Expense{
		ID:       id,
		Date:     time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Vendor:   "Vendor " + id,
		Amount:   amount,
		Currency: "USD",
		Category: model.CategoryOther,
	}
}

func testFlag(id, expenseID string) model.AnomalyFlag {
	return model.AnomalyFlag{
		ID:         id,
		ExpenseID:  expenseID,
		Kind:       model.AnomalyRoundNumber,
		Severity:   model.SeverityLow,
		Confidence: 0.6,
		CreatedAt:  time.Now(),
	}
}

func TestMemoryStore_ExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.UpsertExpense(ctx, testExpense("e1", 10)))

	got, err := store.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Vendor e1", got.Vendor)

	_, err = store.GetExpense(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.DeleteExpense(ctx, "e1"))
	_, err = store.GetExpense(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteExpense(ctx, "e1"), common.ErrNotFound)
}

func TestMemoryStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("missing ID", func(t *testing.T) {
		e := testExpense("", 10)
		assert.Error(t, store.UpsertExpense(ctx, e))
	})

	t.Run("missing vendor", func(t *testing.T) {
		e := testExpense("e1", 10)
		e.Vendor = ""
		assert.Error(t, store.UpsertExpense(ctx, e))
	})

	t.Run("unknown category", func(t *testing.T) {
		e := testExpense("e1", 10)
		e.Category = "snacks"
		assert.Error(t, store.UpsertExpense(ctx, e))
	})
}

func TestMemoryStore_InsertionOrderSurvivesUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.UpsertExpenses(ctx, []model.Expense{
		testExpense("a", 1),
		testExpense("b", 2),
		testExpense("c", 3),
	}))

	// Re-uploading "a" updates in place without moving it to the end.
	updated := testExpense("a", 99)
	require.NoError(t, store.UpsertExpense(ctx, updated))

	all, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, float64(99), all[0].Amount)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)
}

func TestMemoryStore_ListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.UpsertExpense(ctx, testExpense("a", 1)))

	snapshot, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	snapshot[0].Amount = 1000

	got, err := store.GetExpense(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got.Amount)
}

func TestMemoryStore_Pagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 7; i++ {
		require.NoError(t, store.UpsertExpense(ctx, testExpense(fmt.Sprintf("e%d", i), float64(i))))
	}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantLen   int
		wantFirst string
	}{
		{"first page", 1, 3, 3, "e0"},
		{"middle page", 2, 3, 3, "e3"},
		{"short last page", 3, 3, 1, "e6"},
		{"page past the end", 4, 3, 0, ""},
		{"zero page defaults to first", 0, 3, 3, "e0"},
		{"zero limit defaults to 50", 1, 0, 7, "e0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.ListExpensePage(ctx, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 7, page.Total)
			require.Len(t, page.Expenses, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Expenses[0].ID)
			}
		})
	}
}

func TestMemoryStore_Flags(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	flags := []model.AnomalyFlag{
		testFlag("f1", "e1"),
		testFlag("f2", "e2"),
	}
	flags[1].Severity = model.SeverityHigh
	require.NoError(t, store.ReplaceFlags(ctx, flags))

	t.Run("list all", func(t *testing.T) {
		got, err := store.ListFlags(ctx, "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "f1", got[0].ID)
	})

	t.Run("filter by severity", func(t *testing.T) {
		got, err := store.ListFlags(ctx, model.SeverityHigh)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "f2", got[0].ID)
	})

	t.Run("get by ID", func(t *testing.T) {
		got, err := store.GetFlag(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "e1", got.ExpenseID)

		_, err = store.GetFlag(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("set explanation", func(t *testing.T) {
		require.NoError(t, store.SetExplanation(ctx, "f1", "looks fabricated"))
		got, err := store.GetFlag(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "looks fabricated", got.AIExplanation)

		assert.ErrorIs(t, store.SetExplanation(ctx, "nope", "x"), common.ErrNotFound)
	})

	t.Run("replace swaps the whole collection", func(t *testing.T) {
		require.NoError(t, store.ReplaceFlags(ctx, []model.AnomalyFlag{testFlag("f3", "e3")}))
		got, err := store.ListFlags(ctx, "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "f3", got[0].ID)
	})
}
