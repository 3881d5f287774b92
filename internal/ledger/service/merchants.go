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

const merchantNotFound = "Merchant not found"

// CreateMerchant stores a merchant built from fields; Name is required.
func (s *Service) CreateMerchant(ctx context.Context, owner id.UserID, fields models.MerchantPatch) (_ *models.Merchant, err error) {
	ctx, span := tracing.Start(ctx, "ledger.CreateMerchant")
	defer func() { tracing.End(span, err) }()

	m, err := models.NewMerchant(id.MerchantID(uuid.New()), owner, fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}
	if err := s.store.CreateMerchant(ctx, m); err != nil {
		return nil, translate(err, merchantNotFound)
	}
	s.committed(ctx, entityMerchant, opCreate, owner, m.ID.String())
	return m, nil
}

func (s *Service) GetMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) (*models.Merchant, error) {
	m, err := s.store.GetMerchant(ctx, owner, merchantID)
	if err != nil {
		return nil, translate(err, merchantNotFound)
	}
	return m, nil
}

func (s *Service) ListMerchants(ctx context.Context, owner id.UserID) ([]*models.Merchant, error) {
	list, err := s.store.ListMerchants(ctx, owner)
	if err != nil {
		return nil, translate(err, merchantNotFound)
	}
	return list, nil
}

func (s *Service) UpdateMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID, patch models.MerchantPatch) (_ *models.Merchant, err error) {
	ctx, span := tracing.Start(ctx, "ledger.UpdateMerchant")
	defer func() { tracing.End(span, err) }()

	var updated *models.Merchant
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.store.GetMerchant(ctx, owner, merchantID)
		if err != nil {
			return err
		}
		if err := m.Apply(patch); err != nil {
			return err
		}
		if err := s.store.UpdateMerchant(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translate(err, merchantNotFound)
	}
	s.committed(ctx, entityMerchant, opUpdate, owner, merchantID.String())
	return updated, nil
}

func (s *Service) DeleteMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.DeleteMerchant")
	defer func() { tracing.End(span, err) }()

	if err := s.store.DeleteMerchant(ctx, owner, merchantID); err != nil {
		if errors.Is(err, sentinel.ErrReferenced) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "Merchant is used by existing transactions")
		}
		return translate(err, merchantNotFound)
	}
	s.committed(ctx, entityMerchant, opDelete, owner, merchantID.String())
	return nil
}
