package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"coinquest/internal/ledger/models"
	"coinquest/internal/platform/tracing"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/requestcontext"
)

const transactionNotFound = "Transaction not found"

// CreateTransaction stores a transaction after checking that its category and
// merchant belong to owner.
func (s *Service) CreateTransaction(ctx context.Context, owner id.UserID, in models.NewTransactionInput) (_ *models.TransactionDetails, err error) {
	ctx, span := tracing.Start(ctx, "ledger.CreateTransaction")
	defer func() { tracing.End(span, err) }()

	t, err := models.NewTransaction(id.TransactionID(uuid.New()), owner, in, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}

	var created *models.TransactionDetails
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, owner, t.CategoryID, t.MerchantID); err != nil {
			return err
		}
		if err := s.store.CreateTransaction(ctx, t); err != nil {
			return err
		}
		d, err := s.store.GetTransaction(ctx, owner, t.ID)
		if err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, translate(err, transactionNotFound)
	}
	s.committed(ctx, entityTransaction, opCreate, owner, t.ID.String())
	return created, nil
}

func (s *Service) GetTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) (*models.TransactionDetails, error) {
	d, err := s.store.GetTransaction(ctx, owner, transactionID)
	if err != nil {
		return nil, translate(err, transactionNotFound)
	}
	return d, nil
}

// ListTransactions returns one page of the owner's transactions matching
// filter, newest first.
func (s *Service) ListTransactions(ctx context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) (_ []*models.TransactionDetails, err error) {
	ctx, span := tracing.Start(ctx, "ledger.ListTransactions")
	defer func() { tracing.End(span, err) }()

	if filter.MinAmount != nil && filter.MaxAmount != nil && *filter.MinAmount > *filter.MaxAmount {
		return nil, dErrors.New(dErrors.CodeValidation, "min_amount cannot exceed max_amount")
	}
	list, err := s.store.ListTransactions(ctx, owner, filter, page)
	if err != nil {
		return nil, translate(err, transactionNotFound)
	}
	return list, nil
}

// UpdateTransaction applies patch. A changed category or merchant must also
// belong to owner.
func (s *Service) UpdateTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID, patch models.TransactionPatch) (_ *models.TransactionDetails, err error) {
	ctx, span := tracing.Start(ctx, "ledger.UpdateTransaction")
	defer func() { tracing.End(span, err) }()

	var updated *models.TransactionDetails
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetTransaction(ctx, owner, transactionID)
		if err != nil {
			return err
		}
		t := current.Transaction
		if err := t.Apply(patch, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if t.CategoryID != current.CategoryID || t.MerchantID != current.MerchantID {
			if err := s.checkReferences(ctx, owner, t.CategoryID, t.MerchantID); err != nil {
				return err
			}
		}
		if err := s.store.UpdateTransaction(ctx, &t); err != nil {
			return err
		}
		d, err := s.store.GetTransaction(ctx, owner, transactionID)
		if err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, translate(err, transactionNotFound)
	}
	s.committed(ctx, entityTransaction, opUpdate, owner, transactionID.String())
	return updated, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.DeleteTransaction")
	defer func() { tracing.End(span, err) }()

	if err := s.store.DeleteTransaction(ctx, owner, transactionID); err != nil {
		return translate(err, transactionNotFound)
	}
	s.committed(ctx, entityTransaction, opDelete, owner, transactionID.String())
	return nil
}

func (s *Service) checkReferences(ctx context.Context, owner id.UserID, categoryID id.CategoryID, merchantID id.MerchantID) error {
	if _, err := s.store.GetCategory(ctx, owner, categoryID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, categoryNotFound)
		}
		return err
	}
	if _, err := s.store.GetMerchant(ctx, owner, merchantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, merchantNotFound)
		}
		return err
	}
	return nil
}
