package models

import (
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// Merchant is a payee or payer label. CategoryName is free text, not a
// reference to a Category.
type Merchant struct {
	ID           id.MerchantID
	UserID       id.UserID
	Name         string
	CategoryName *string
	Website      *string
	Notes        *string
	CreatedAt    time.Time
}

func NewMerchant(merchantID id.MerchantID, owner id.UserID, fields MerchantPatch, now time.Time) (*Merchant, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "merchant owner is required")
	}
	if fields.Name == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is required")
	}
	m := &Merchant{ID: merchantID, UserID: owner, CreatedAt: now}
	if err := m.Apply(fields); err != nil {
		return nil, err
	}
	return m, nil
}

// MerchantPatch lists the mutable merchant fields; nil means unchanged.
type MerchantPatch struct {
	Name         *string
	CategoryName *string
	Website      *string
	Notes        *string
}

// Apply validates and merges p into m. On error m is left unchanged.
func (m *Merchant) Apply(p MerchantPatch) error {
	next := *m
	var err error
	if p.Name != nil {
		if next.Name, err = requiredName(*p.Name, "name"); err != nil {
			return err
		}
	}
	if p.CategoryName != nil {
		if next.CategoryName, err = optionalText(p.CategoryName, "category_name", maxNameLength); err != nil {
			return err
		}
	}
	if p.Website != nil {
		if next.Website, err = optionalText(p.Website, "website", maxShortText); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		if next.Notes, err = optionalText(p.Notes, "notes", maxLongText); err != nil {
			return err
		}
	}
	*m = next
	return nil
}
