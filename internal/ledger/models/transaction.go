package models

import (
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// Transaction is a dated income or expense. Amount is always positive and
// held at two decimals; Date carries no time of day.
type Transaction struct {
	ID          id.TransactionID
	UserID      id.UserID
	Date        time.Time
	Type        Kind
	Amount      float64
	Description *string
	Notes       *string
	ReceiptURL  *string
	CategoryID  id.CategoryID
	MerchantID  id.MerchantID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TransactionDetails is a transaction with its category and merchant resolved.
type TransactionDetails struct {
	Transaction
	Category Category
	Merchant Merchant
}

// NewTransactionInput holds the required and optional creation fields.
type NewTransactionInput struct {
	Date        time.Time
	Type        Kind
	Amount      float64
	Description *string
	Notes       *string
	ReceiptURL  *string
	CategoryID  id.CategoryID
	MerchantID  id.MerchantID
}

func NewTransaction(transactionID id.TransactionID, owner id.UserID, in NewTransactionInput, now time.Time) (*Transaction, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "transaction owner is required")
	}
	if in.Date.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "date is required")
	}
	if in.CategoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "category_id is required")
	}
	if in.MerchantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "merchant_id is required")
	}
	t := &Transaction{ID: transactionID, UserID: owner, CreatedAt: now}
	err := t.apply(TransactionPatch{
		Date:        &in.Date,
		Type:        &in.Type,
		Amount:      &in.Amount,
		Description: in.Description,
		Notes:       in.Notes,
		ReceiptURL:  in.ReceiptURL,
		CategoryID:  &in.CategoryID,
		MerchantID:  &in.MerchantID,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TransactionPatch lists the mutable transaction fields; nil means unchanged.
type TransactionPatch struct {
	Date        *time.Time
	Type        *Kind
	Amount      *float64
	Description *string
	Notes       *string
	ReceiptURL  *string
	CategoryID  *id.CategoryID
	MerchantID  *id.MerchantID
}

// Apply validates and merges p into t and stamps UpdatedAt. On error t is
// left unchanged.
func (t *Transaction) Apply(p TransactionPatch, now time.Time) error {
	if err := t.apply(p); err != nil {
		return err
	}
	t.UpdatedAt = &now
	return nil
}

func (t *Transaction) apply(p TransactionPatch) error {
	next := *t
	var err error
	if p.Date != nil {
		next.Date = DateOnly(*p.Date)
	}
	if p.Type != nil {
		if !p.Type.IsValid() {
			return dErrors.New(dErrors.CodeInvariantViolation, "type must be one of income, expense")
		}
		next.Type = *p.Type
	}
	if p.Amount != nil {
		if next.Amount, err = PositiveAmount(*p.Amount, "Amount"); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if next.Description, err = optionalText(p.Description, "description", maxShortText); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		if next.Notes, err = optionalText(p.Notes, "notes", maxLongText); err != nil {
			return err
		}
	}
	if p.ReceiptURL != nil {
		if next.ReceiptURL, err = optionalText(p.ReceiptURL, "receipt_url", maxShortText); err != nil {
			return err
		}
	}
	if p.CategoryID != nil && !p.CategoryID.IsNil() {
		next.CategoryID = *p.CategoryID
	}
	if p.MerchantID != nil && !p.MerchantID.IsNil() {
		next.MerchantID = *p.MerchantID
	}
	*t = next
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
