// Package seed loads a demo expense dataset, including entries planted to
// trip each anomaly detection rule.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/service"
)

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n).Truncate(24 * time.Hour)
}

// weekendWeeksAgo returns the Saturday nearest to n weeks ago.
func weekendWeeksAgo(n int) time.Time {
	d := time.Now().AddDate(0, 0, -n*7)
	switch d.Weekday() {
	case time.Sunday:
		d = d.AddDate(0, 0, -1)
	default:
		d = d.AddDate(0, 0, int(time.Saturday-d.Weekday()))
	}
	return d.Truncate(24 * time.Hour)
}

func expense(date time.Time, vendor string, amount float64, category model.Category, description, submittedBy string) model.Expense {
	return model.Expense{
		ID:          uuid.NewString(),
		Date:        date,
		Vendor:      vendor,
		Amount:      amount,
		Currency:    "USD",
		Category:    category,
		Description: description,
		SubmittedBy: submittedBy,
	}
}

// Load inserts the demo dataset into the store and returns how many
// expenses were seeded.
func Load(ctx context.Context, store service.ExpenseStore) (int, error) {
	expenses := []model.Expense{
		// Normal travel
		expense(daysAgo(1), "Uber", 24.50, model.CategoryTravel, "Ride to client meeting", "Alice Chen"),
		expense(daysAgo(2), "Delta Airlines", 342.00, model.CategoryTravel, "Flight to NYC", "Bob Martinez"),
		expense(daysAgo(3), "Hilton Hotels", 189.00, model.CategoryTravel, "Hotel - 1 night NYC", "Bob Martinez"),
		expense(daysAgo(5), "Lyft", 18.75, model.CategoryTravel, "Airport pickup", "Carol Williams"),
		expense(daysAgo(7), "United Airlines", 287.00, model.CategoryTravel, "Flight to Chicago", "David Kim"),
		expense(daysAgo(10), "Marriott", 220.00, model.CategoryTravel, "Hotel - 1 night CHI", "David Kim"),

		// Normal meals
		expense(daysAgo(1), "Blue Bottle Coffee", 6.50, model.CategoryMeals, "Morning coffee", "Alice Chen"),
		expense(daysAgo(2), "Sweetgreen", 14.25, model.CategoryMeals, "Working lunch", "Carol Williams"),
		expense(daysAgo(3), "DoorDash", 32.80, model.CategoryMeals, "Team lunch delivery", "Eva Thompson"),
		expense(daysAgo(4), "Chipotle", 12.95, model.CategoryMeals, "Lunch", "Bob Martinez"),
		expense(daysAgo(6), "Starbucks", 5.75, model.CategoryMeals, "Coffee meeting", "David Kim"),
		expense(daysAgo(8), "Grubhub", 28.40, model.CategoryMeals, "Working dinner", "Alice Chen"),

		// Software
		expense(daysAgo(1), "AWS", 847.32, model.CategorySoftware, "Monthly cloud hosting", "Eva Thompson"),
		expense(daysAgo(5), "Slack", 12.50, model.CategorySoftware, "Pro plan - 1 seat", "Alice Chen"),
		expense(daysAgo(10), "Zoom", 14.99, model.CategorySoftware, "Pro meeting plan", "Carol Williams"),
		expense(daysAgo(12), "Google Cloud", 523.18, model.CategorySoftware, "GCP monthly", "Eva Thompson"),
		expense(daysAgo(15), "GitHub", 44.00, model.CategorySoftware, "Team plan", "David Kim"),
		expense(daysAgo(20), "Figma", 15.00, model.CategorySoftware, "Professional plan", "Carol Williams"),

		// Office supplies
		expense(daysAgo(3), "Staples", 67.42, model.CategoryOfficeSupplies, "Printer paper and pens", "Alice Chen"),
		expense(daysAgo(9), "Amazon", 34.99, model.CategoryOfficeSupplies, "USB-C hub", "Bob Martinez"),

		// Equipment
		expense(daysAgo(14), "Apple Store", 1299.00, model.CategoryEquipment, "MacBook Air M3", "Eva Thompson"),
		expense(daysAgo(18), "Dell", 249.00, model.CategoryEquipment, "External monitor", "Bob Martinez"),

		// Marketing
		expense(daysAgo(4), "Google Ads", 1500.00, model.CategoryMarketing, "Monthly ad spend", "Carol Williams"),
		expense(daysAgo(11), "Facebook Ads", 750.00, model.CategoryMarketing, "Social campaign", "Carol Williams"),

		// Professional services
		expense(daysAgo(6), "WeWork", 450.00, model.CategoryProfessionalServices, "Coworking space rental", "David Kim"),

		// Duplicate pair (same vendor, same amount, 1 day apart)
		expense(daysAgo(2), "Uber", 24.50, model.CategoryTravel, "Ride to client meeting", "Alice Chen"),

		// Round numbers
		expense(daysAgo(3), "Office Depot", 500.00, model.CategoryOfficeSupplies, "Office supplies restock", "Bob Martinez"),
		expense(daysAgo(7), "Consulting Inc", 1000.00, model.CategoryProfessionalServices, "Consulting fees", "Eva Thompson"),
		expense(daysAgo(12), "Training Corp", 2000.00, model.CategoryProfessionalServices, "Training session", "David Kim"),

		// Weekend expenses
		expense(weekendWeeksAgo(1), "Nobu", 285.00, model.CategoryMeals, "Client dinner", "Alice Chen"),
		expense(weekendWeeksAgo(2), "Ritz-Carlton", 450.00, model.CategoryTravel, "Weekend hotel", "Bob Martinez"),

		// Unusually high amounts
		expense(daysAgo(4), "The Capital Grille", 892.50, model.CategoryMeals, "Team dinner - 4 people", "Eva Thompson"),
		expense(daysAgo(9), "Private Jet Co", 4500.00, model.CategoryTravel, "Charter flight", "David Kim"),

		// Frequency spike: same vendor hammered within one week
		expense(daysAgo(30), "Cloud Catering", 45.00, model.CategoryMeals, "Team breakfast", "Eva Thompson"),
		expense(daysAgo(31), "Cloud Catering", 52.25, model.CategoryMeals, "Team lunch", "Eva Thompson"),
		expense(daysAgo(32), "Cloud Catering", 48.10, model.CategoryMeals, "Team lunch", "Eva Thompson"),
		expense(daysAgo(33), "Cloud Catering", 61.00, model.CategoryMeals, "Working dinner", "Eva Thompson"),
		expense(daysAgo(34), "Cloud Catering", 44.80, model.CategoryMeals, "Team lunch", "Eva Thompson"),

		// More normal expenses to round out
		expense(daysAgo(1), "Postmates", 19.99, model.CategoryMeals, "Lunch delivery", "Bob Martinez"),
		expense(daysAgo(2), "Notion", 10.00, model.CategorySoftware, "Team workspace", "Alice Chen"),
		expense(daysAgo(5), "Uber Eats", 22.30, model.CategoryMeals, "Working dinner", "David Kim"),
		expense(daysAgo(6), "FedEx", 35.00, model.CategoryOfficeSupplies, "Package shipping", "Carol Williams"),
		expense(daysAgo(8), "Hertz", 89.00, model.CategoryTravel, "Car rental - 1 day", "Eva Thompson"),
		expense(daysAgo(11), "LinkedIn", 59.99, model.CategoryMarketing, "Premium business", "Alice Chen"),
		expense(daysAgo(13), "Dropbox", 19.99, model.CategorySoftware, "Business plan", "Bob Martinez"),
		expense(daysAgo(16), "Uber", 31.25, model.CategoryTravel, "Client visit", "Carol Williams"),
		expense(daysAgo(19), "Panera Bread", 11.50, model.CategoryMeals, "Quick lunch", "David Kim"),
		expense(daysAgo(21), "Adobe", 54.99, model.CategorySoftware, "Creative Cloud", "Eva Thompson"),
		expense(daysAgo(22), "Uber", 15.00, model.CategoryTravel, "Office commute", "Alice Chen"),
		expense(daysAgo(25), "Best Buy", 79.99, model.CategoryEquipment, "Keyboard", "Bob Martinez"),
		expense(daysAgo(27), "Vercel", 20.00, model.CategorySoftware, "Pro plan", "Carol Williams"),
		expense(daysAgo(28), "Cava", 13.75, model.CategoryMeals, "Lunch", "David Kim"),
		expense(daysAgo(29), "JetBlue", 198.00, model.CategoryTravel, "Flight to Boston", "Eva Thompson"),
	}

	if err := store.UpsertExpenses(ctx, expenses); err != nil {
		return 0, err
	}
	return len(expenses), nil
}
