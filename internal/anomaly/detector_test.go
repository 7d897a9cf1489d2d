package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensed-ai/expensed/internal/model"
)

// Jan 15 2026 is a Thursday.
func onDay(day int) time.Time {
	return time.Date(2026, time.January, day, 12, 0, 0, 0, time.UTC)
}

func expense(id, vendor string, amount float64, date time.Time, category model.Category) model.Expense {
	return model.Expense{
		ID:       id,
		Vendor:   vendor,
		Amount:   amount,
		Date:     date,
		Currency: "USD",
		Category: category,
	}
}

func ofKind(flags []model.AnomalyFlag, kind model.AnomalyKind) []model.AnomalyFlag {
	var out []model.AnomalyFlag
	for _, f := range flags {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, Detect(nil))
	assert.Empty(t, Detect([]model.Expense{}))
}

func TestDetectDuplicates(t *testing.T) {
	tests := []struct {
		name      string
		a, b      model.Expense
		wantFlag  bool
		flaggedID string
	}{
		{
			name:      "same vendor and amount one day apart",
			a:         expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
			b:         expense("b", "Uber", 24.50, onDay(14), model.CategoryTravel),
			wantFlag:  true,
			flaggedID: "b",
		},
		{
			name:      "vendor match is case-insensitive",
			a:         expense("a", "uber", 24.50, onDay(13), model.CategoryTravel),
			b:         expense("b", "UBER", 24.50, onDay(15), model.CategoryTravel),
			wantFlag:  true,
			flaggedID: "b",
		},
		{
			name:      "later-dated record is flagged regardless of order",
			a:         expense("a", "Uber", 24.50, onDay(14), model.CategoryTravel),
			b:         expense("b", "Uber", 24.50, onDay(13), model.CategoryTravel),
			wantFlag:  true,
			flaggedID: "a",
		},
		{
			name:     "three days apart is not a duplicate",
			a:        expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
			b:        expense("b", "Uber", 24.50, onDay(16), model.CategoryTravel),
			wantFlag: false,
		},
		{
			name:      "amounts within a cent still match",
			a:         expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
			b:         expense("b", "Uber", 24.505, onDay(14), model.CategoryTravel),
			wantFlag:  true,
			flaggedID: "b",
		},
		{
			name:     "a cent apart is distinct",
			a:        expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
			b:        expense("b", "Uber", 24.51, onDay(14), model.CategoryTravel),
			wantFlag: false,
		},
		{
			name:     "different vendors never match",
			a:        expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
			b:        expense("b", "Lyft", 24.50, onDay(13), model.CategoryTravel),
			wantFlag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := ofKind(detectDuplicates([]model.Expense{tt.a, tt.b}), model.AnomalyDuplicate)
			if !tt.wantFlag {
				assert.Empty(t, flags)
				return
			}
			require.Len(t, flags, 1)
			assert.Equal(t, tt.flaggedID, flags[0].ExpenseID)
			assert.Equal(t, model.SeverityHigh, flags[0].Severity)
			assert.InDelta(t, 0.9, flags[0].Confidence, 0.0001)
			assert.Contains(t, flags[0].RuleDetails, "Duplicate of expense from")
		})
	}
}

// A third identical record five days out is too far from the first record to
// pair with it, and too far from the second as well; only the day-after
// record is flagged.
func TestDetectDuplicates_WindowDoesNotChain(t *testing.T) {
	expenses := []model.Expense{
		expense("a", "Uber", 24.50, onDay(10), model.CategoryTravel),
		expense("b", "Uber", 24.50, onDay(11), model.CategoryTravel),
		expense("c", "Uber", 24.50, onDay(15), model.CategoryTravel),
	}
	flags := detectDuplicates(expenses)
	require.Len(t, flags, 1)
	assert.Equal(t, "b", flags[0].ExpenseID)
}

// A chain of three near-identical records produces one flag per later record,
// not one per pair.
func TestDetect_DuplicateChainDedupes(t *testing.T) {
	expenses := []model.Expense{
		expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
		expense("b", "Uber", 24.50, onDay(14), model.CategoryTravel),
		expense("c", "Uber", 24.50, onDay(15), model.CategoryTravel),
	}
	flags := ofKind(Detect(expenses), model.AnomalyDuplicate)
	require.Len(t, flags, 2)
	assert.Equal(t, "b", flags[0].ExpenseID)
	assert.Equal(t, "c", flags[1].ExpenseID)
}

func TestDetectRoundNumbers(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		wantFlag bool
	}{
		{"exactly 100", 100, true},
		{"500 flat", 500, true},
		{"2000 flat", 2000, true},
		{"499.99 just under", 499.99, false},
		{"150 not divisible by 100", 150, false},
		{"99 below threshold", 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expense("x", "Vendor Co", tt.amount, onDay(13), model.CategoryOther)
			flags := detectRoundNumbers([]model.Expense{e})
			if !tt.wantFlag {
				assert.Empty(t, flags)
				return
			}
			require.Len(t, flags, 1)
			assert.Equal(t, model.SeverityLow, flags[0].Severity)
			assert.InDelta(t, 0.6, flags[0].Confidence, 0.0001)
		})
	}
}

func TestDetectWeekendSpikes(t *testing.T) {
	saturday := expense("sat", "Nobu", 340, onDay(17), model.CategoryMeals)
	sunday := expense("sun", "Ritz-Carlton", 220, onDay(18), model.CategoryTravel)
	thursday := expense("thu", "Office Depot", 45, onDay(15), model.CategoryOfficeSupplies)

	flags := detectWeekendSpikes([]model.Expense{saturday, sunday, thursday})
	require.Len(t, flags, 2)
	assert.Equal(t, "sat", flags[0].ExpenseID)
	assert.Contains(t, flags[0].RuleDetails, "Saturday")
	assert.Equal(t, "sun", flags[1].ExpenseID)
	assert.Contains(t, flags[1].RuleDetails, "Sunday")
	for _, f := range flags {
		assert.Equal(t, model.SeverityMedium, f.Severity)
		assert.InDelta(t, 0.7, f.Confidence, 0.0001)
	}
}

func TestDetectUnusualAmounts(t *testing.T) {
	t.Run("outlier above 3x category mean", func(t *testing.T) {
		// Mean is (10+10+10+110)/4 = 35; 110 > 105.
		expenses := []model.Expense{
			expense("a", "Cafe A", 10, onDay(12), model.CategoryMeals),
			expense("b", "Cafe B", 10, onDay(13), model.CategoryMeals),
			expense("c", "Cafe C", 10, onDay(14), model.CategoryMeals),
			expense("d", "Capital Grille", 110, onDay(15), model.CategoryMeals),
		}
		flags := detectUnusualAmounts(expenses)
		require.Len(t, flags, 1)
		assert.Equal(t, "d", flags[0].ExpenseID)
		assert.Equal(t, model.SeverityHigh, flags[0].Severity)
		assert.InDelta(t, 0.85, flags[0].Confidence, 0.0001)
		assert.Contains(t, flags[0].RuleDetails, "category average")
	})

	t.Run("under 3x mean is normal", func(t *testing.T) {
		// Mean is (10+10+10+50)/4 = 20; 50 < 60.
		expenses := []model.Expense{
			expense("a", "Cafe A", 10, onDay(12), model.CategoryMeals),
			expense("b", "Cafe B", 10, onDay(13), model.CategoryMeals),
			expense("c", "Cafe C", 10, onDay(14), model.CategoryMeals),
			expense("d", "Cafe D", 50, onDay(15), model.CategoryMeals),
		}
		assert.Empty(t, detectUnusualAmounts(expenses))
	})

	t.Run("fewer than three records in category", func(t *testing.T) {
		expenses := []model.Expense{
			expense("a", "Cafe A", 10, onDay(12), model.CategoryMeals),
			expense("b", "Private Jet Co", 9000, onDay(13), model.CategoryMeals),
		}
		assert.Empty(t, detectUnusualAmounts(expenses))
	})
}

func TestDetectFrequencySpikes(t *testing.T) {
	t.Run("fourth and later charges in a week are flagged", func(t *testing.T) {
		expenses := []model.Expense{
			expense("a", "Cloud Catering", 10, onDay(9), model.CategoryMeals),
			expense("b", "Cloud Catering", 20, onDay(10), model.CategoryMeals),
			expense("c", "cloud catering", 30, onDay(11), model.CategoryMeals),
			expense("d", "Cloud Catering", 40, onDay(12), model.CategoryMeals),
			expense("e", "Cloud Catering", 50, onDay(13), model.CategoryMeals),
		}
		flags := detectFrequencySpikes(expenses)
		require.Len(t, flags, 2)
		assert.Equal(t, "d", flags[0].ExpenseID)
		assert.Equal(t, "e", flags[1].ExpenseID)
		for _, f := range flags {
			assert.Equal(t, model.SeverityMedium, f.Severity)
			assert.InDelta(t, 0.75, f.Confidence, 0.0001)
			assert.Contains(t, f.RuleDetails, "5 times in one week")
		}
	})

	t.Run("three charges in a week is fine", func(t *testing.T) {
		expenses := []model.Expense{
			expense("a", "Cloud Catering", 10, onDay(9), model.CategoryMeals),
			expense("b", "Cloud Catering", 20, onDay(10), model.CategoryMeals),
			expense("c", "Cloud Catering", 30, onDay(11), model.CategoryMeals),
		}
		assert.Empty(t, detectFrequencySpikes(expenses))
	})

	t.Run("charges split across weeks do not accumulate", func(t *testing.T) {
		expenses := []model.Expense{
			expense("a", "Cloud Catering", 10, onDay(5), model.CategoryMeals),
			expense("b", "Cloud Catering", 20, onDay(6), model.CategoryMeals),
			expense("c", "Cloud Catering", 30, onDay(12), model.CategoryMeals),
			expense("d", "Cloud Catering", 40, onDay(13), model.CategoryMeals),
		}
		assert.Empty(t, detectFrequencySpikes(expenses))
	})
}

// Detection is deterministic: repeated runs over the same snapshot produce
// the same flags in the same order, modulo generated IDs.
func TestDetect_Deterministic(t *testing.T) {
	expenses := []model.Expense{
		expense("a", "Uber", 24.50, onDay(13), model.CategoryTravel),
		expense("b", "Uber", 24.50, onDay(14), model.CategoryTravel),
		expense("c", "Vendor Co", 500, onDay(15), model.CategoryOther),
		expense("d", "Nobu", 340, onDay(17), model.CategoryMeals),
	}

	first := Detect(expenses)
	second := Detect(expenses)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ExpenseID, second[i].ExpenseID)
		assert.Equal(t, first[i].Kind, second[i].Kind)
	}
}
