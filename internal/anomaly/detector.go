// Package anomaly implements the rule-based detection engine that scans the
// expense collection for suspicious entries.
package anomaly

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expensed-ai/expensed/internal/model"
)

// Detect runs the five detection rules over a snapshot of the expense
// collection and returns the deduplicated flags in generation order. Rules
// never fail; an empty collection yields an empty flag list.
func Detect(expenses []model.Expense) []model.AnomalyFlag {
	var flags []model.AnomalyFlag
	flags = append(flags, detectDuplicates(expenses)...)
	flags = append(flags, detectRoundNumbers(expenses)...)
	flags = append(flags, detectWeekendSpikes(expenses)...)
	flags = append(flags, detectUnusualAmounts(expenses)...)
	flags = append(flags, detectFrequencySpikes(expenses)...)
	return dedupe(flags)
}

func newFlag(expense model.Expense, kind model.AnomalyKind, severity model.Severity, confidence float64, details string) model.AnomalyFlag {
	return model.AnomalyFlag{
		ID:          uuid.NewString(),
		ExpenseID:   expense.ID,
		Expense:     expense,
		Kind:        kind,
		Severity:    severity,
		Confidence:  confidence,
		RuleDetails: details,
		CreatedAt:   time.Now(),
	}
}

// detectDuplicates flags the later-dated record of any pair with the same
// vendor (case-insensitive), amounts within one cent, and dates at most two
// days apart. With equal dates the record appearing later in the collection
// is flagged.
func detectDuplicates(expenses []model.Expense) []model.AnomalyFlag {
	var flags []model.AnomalyFlag
	for i := 0; i < len(expenses); i++ {
		for j := i + 1; j < len(expenses); j++ {
			a, b := expenses[i], expenses[j]
			if !strings.EqualFold(a.Vendor, b.Vendor) {
				continue
			}
			if math.Abs(a.Amount-b.Amount) >= 0.01 {
				continue
			}
			daysDiff := math.Abs(b.Date.Sub(a.Date).Hours() / 24)
			if daysDiff > 2 {
				continue
			}

			earlier, later := a, b
			if b.Date.Before(a.Date) {
				earlier, later = b, a
			}
			flags = append(flags, newFlag(later, model.AnomalyDuplicate, model.SeverityHigh, 0.9,
				fmt.Sprintf("Duplicate of expense from %s: same vendor %q and amount $%.2f within %.0f day(s)",
					earlier.Date.Format("2006-01-02"), earlier.Vendor, earlier.Amount, daysDiff)))
		}
	}
	return flags
}

// detectRoundNumbers flags amounts of at least 100 that are exactly
// divisible by 100.
func detectRoundNumbers(expenses []model.Expense) []model.AnomalyFlag {
	var flags []model.AnomalyFlag
	for _, e := range expenses {
		if e.Amount >= 100 && math.Mod(e.Amount, 100) == 0 {
			flags = append(flags, newFlag(e, model.AnomalyRoundNumber, model.SeverityLow, 0.6,
				fmt.Sprintf("Round number amount: $%.2f - may indicate estimated or fabricated expense", e.Amount)))
		}
	}
	return flags
}

// detectWeekendSpikes flags expenses dated on a Saturday or Sunday. Plain
// calendar day-of-week; no holiday logic.
func detectWeekendSpikes(expenses []model.Expense) []model.AnomalyFlag {
	var flags []model.AnomalyFlag
	for _, e := range expenses {
		day := e.Date.Weekday()
		if day != time.Saturday && day != time.Sunday {
			continue
		}
		flags = append(flags, newFlag(e, model.AnomalyWeekendSpike, model.SeverityMedium, 0.7,
			fmt.Sprintf("Expense submitted on %s - unusual for business expenses", day)))
	}
	return flags
}

// detectUnusualAmounts flags any expense exceeding 3x its category's mean
// amount, for categories with at least 3 records.
func detectUnusualAmounts(expenses []model.Expense) []model.AnomalyFlag {
	type bucket struct {
		sum   float64
		count int
	}
	byCategory := make(map[model.Category]*bucket)
	for _, e := range expenses {
		b := byCategory[e.Category]
		if b == nil {
			b = &bucket{}
			byCategory[e.Category] = b
		}
		b.sum += e.Amount
		b.count++
	}

	var flags []model.AnomalyFlag
	for _, e := range expenses {
		b := byCategory[e.Category]
		if b == nil || b.count < 3 {
			continue
		}
		mean := b.sum / float64(b.count)
		if e.Amount > mean*3 {
			flags = append(flags, newFlag(e, model.AnomalyUnusualAmount, model.SeverityHigh, 0.85,
				fmt.Sprintf("Amount $%.2f is %.1fx the category average of $%.2f for %q",
					e.Amount, e.Amount/mean, mean, e.Category)))
		}
	}
	return flags
}

// detectFrequencySpikes groups expenses by (case-insensitive vendor, week of
// year) and flags every record beyond the first 3 in a group, in original
// collection order. The week bucket is ceil(days since Jan 1 / 7) - not ISO
// week numbering, and intentionally kept that way for compatibility with the
// existing metric series despite its year-boundary quirk.
func detectFrequencySpikes(expenses []model.Expense) []model.AnomalyFlag {
	groups := make(map[string][]model.Expense)
	var order []string
	for _, e := range expenses {
		jan1 := time.Date(e.Date.Year(), time.January, 1, 0, 0, 0, 0, e.Date.Location())
		week := int(math.Ceil(e.Date.Sub(jan1).Hours() / (24 * 7)))
		key := fmt.Sprintf("%s|%d-W%d", strings.ToLower(e.Vendor), e.Date.Year(), week)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	var flags []model.AnomalyFlag
	for _, key := range order {
		group := groups[key]
		if len(group) <= 3 {
			continue
		}
		vendor := strings.ToLower(group[0].Vendor)
		for _, e := range group[3:] {
			flags = append(flags, newFlag(e, model.AnomalyFrequencySpike, model.SeverityMedium, 0.75,
				fmt.Sprintf("Vendor %q charged %d times in one week - possible duplicate billing", vendor, len(group))))
		}
	}
	return flags
}

// dedupe keeps only the first flag per (expense, kind) pair in generation
// order. A record may still carry flags of several distinct kinds.
func dedupe(flags []model.AnomalyFlag) []model.AnomalyFlag {
	seen := make(map[string]bool, len(flags))
	out := make([]model.AnomalyFlag, 0, len(flags))
	for _, f := range flags {
		key := f.ExpenseID + "|" + string(f.Kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
