package models

import (
	"slices"
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is an offset window over an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

// NewPage validates skip and limit.
func NewPage(skip, limit int) (Page, error) {
	if skip < 0 {
		return Page{}, dErrors.New(dErrors.CodeValidation, "skip must be non-negative")
	}
	if limit < 1 {
		return Page{}, dErrors.New(dErrors.CodeValidation, "limit must be at least 1")
	}
	if limit > MaxLimit {
		return Page{}, dErrors.New(dErrors.CodeValidation, "Limit cannot exceed 1000")
	}
	return Page{Skip: skip, Limit: limit}, nil
}

// DefaultPage is skip=0, limit=100.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit}
}

// TransactionFilter narrows a transaction listing. Set fields combine with
// AND; Search matches description, notes or merchant name case-insensitively.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Type        *Kind
	CategoryIDs []id.CategoryID
	MerchantIDs []id.MerchantID
	MinAmount   *float64
	MaxAmount   *float64
	Search      string
}

// Matches reports whether t, whose merchant is named merchantName, passes f.
func (f TransactionFilter) Matches(t *Transaction, merchantName string) bool {
	if f.StartDate != nil && t.Date.Before(DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && t.Date.After(DateOnly(*f.EndDate)) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, t.CategoryID) {
		return false
	}
	if len(f.MerchantIDs) > 0 && !slices.Contains(f.MerchantIDs, t.MerchantID) {
		return false
	}
	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}
	if f.Search != "" {
		return containsFold(t.Description, f.Search) ||
			containsFold(t.Notes, f.Search) ||
			containsFold(&merchantName, f.Search)
	}
	return true
}

// BudgetFilter narrows a budget listing by month and/or year.
type BudgetFilter struct {
	Month *int
	Year  *int
}

func (f BudgetFilter) Matches(b *Budget) bool {
	if f.Month != nil && b.Month != *f.Month {
		return false
	}
	if f.Year != nil && b.Year != *f.Year {
		return false
	}
	return true
}
