// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"time"
)

// Category is the closed set of expense categories.
type Category string

// Expense categories.
const (
	CategoryTravel               Category = "travel"
	CategoryMeals                Category = "meals"
	CategorySoftware             Category = "software"
	CategoryOfficeSupplies       Category = "office_supplies"
	CategoryEquipment            Category = "equipment"
	CategoryMarketing            Category = "marketing"
	CategoryProfessionalServices Category = "professional_services"
	CategoryUtilities            Category = "utilities"
	CategoryOther                Category = "other"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryTravel,
		CategoryMeals,
		CategorySoftware,
		CategoryOfficeSupplies,
		CategoryEquipment,
		CategoryMarketing,
		CategoryProfessionalServices,
		CategoryUtilities,
		CategoryOther,
	}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Expense represents a single financial entry subject to anomaly checks.
// Expenses are immutable once created; re-uploading supersedes the prior
// entry under the same ID.
type Expense struct {
	Date        time.Time `json:"date"`
	ID          string    `json:"id"`
	Vendor      string    `json:"vendor"`
	Currency    string    `json:"currency"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	SubmittedBy string    `json:"submittedBy"`
	Amount      float64   `json:"amount"`
}

// Validate checks the expense for structural problems before storage.
func (e *Expense) Validate() error {
	if e.Vendor == "" {
		return fmt.Errorf("expense vendor is required")
	}
	if e.Category != "" && !e.Category.IsValid() {
		return fmt.Errorf("unknown expense category: %s", e.Category)
	}
	return nil
}
