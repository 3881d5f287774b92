package models

import (
	"time"

	id "coinquest/pkg/domain"
)

// MonthlyTotals are transaction sums for one calendar month.
type MonthlyTotals struct {
	Income   float64
	Expenses float64
	Count    int
}

// CategorySpend is the expense total of one category for one month, with
// the matching budget amount when a budget exists.
type CategorySpend struct {
	CategoryID   id.CategoryID
	CategoryName string
	Amount       float64
	BudgetAmount *float64
}

// MonthBounds returns [first day of month, first day of next month) in UTC.
func MonthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
