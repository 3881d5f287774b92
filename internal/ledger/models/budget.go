package models

import (
	"math"
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// DefaultAlertThreshold is the share of a budget at which clients warn.
const DefaultAlertThreshold = 0.8

const (
	minBudgetYear = 1900
	maxBudgetYear = 9999
)

// Budget is a spending ceiling for one category in one month.
//
// Invariants:
//   - Amount > 0, two decimals
//   - 1 <= Month <= 12
//   - 0 < AlertThreshold <= 1
//   - CategoryID, Month and Year never change after creation
type Budget struct {
	ID             id.BudgetID
	UserID         id.UserID
	CategoryID     id.CategoryID
	Amount         float64
	Month          int
	Year           int
	AlertThreshold float64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// BudgetDetails is a budget with its category resolved.
type BudgetDetails struct {
	Budget
	Category Category
}

func NewBudget(budgetID id.BudgetID, owner id.UserID, categoryID id.CategoryID, amount float64, month, year int, threshold *float64, now time.Time) (*Budget, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "budget owner is required")
	}
	if categoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "category_id is required")
	}
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	if year < minBudgetYear || year > maxBudgetYear {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "Year is out of range")
	}
	b := &Budget{
		ID:             budgetID,
		UserID:         owner,
		CategoryID:     categoryID,
		Month:          month,
		Year:           year,
		AlertThreshold: DefaultAlertThreshold,
		CreatedAt:      now,
	}
	if err := b.apply(BudgetPatch{Amount: &amount, AlertThreshold: threshold}); err != nil {
		return nil, err
	}
	return b, nil
}

// BudgetPatch lists the mutable budget fields; nil means unchanged.
type BudgetPatch struct {
	Amount         *float64
	AlertThreshold *float64
}

// Apply validates and merges p into b and stamps UpdatedAt.
func (b *Budget) Apply(p BudgetPatch, now time.Time) error {
	if err := b.apply(p); err != nil {
		return err
	}
	b.UpdatedAt = &now
	return nil
}

func (b *Budget) apply(p BudgetPatch) error {
	next := *b
	if p.Amount != nil {
		amount, err := PositiveAmount(*p.Amount, "Budget amount")
		if err != nil {
			return err
		}
		next.Amount = amount
	}
	if p.AlertThreshold != nil {
		t := *p.AlertThreshold
		if math.IsNaN(t) || t <= 0 || t > 1 {
			return dErrors.New(dErrors.CodeInvariantViolation, "Alert threshold must be between 0 and 1")
		}
		next.AlertThreshold = t
	}
	*b = next
	return nil
}

// ValidateMonth rejects months outside 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return dErrors.New(dErrors.CodeInvariantViolation, "Month must be between 1 and 12")
	}
	return nil
}
