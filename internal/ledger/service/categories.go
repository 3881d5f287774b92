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

const categoryNotFound = "Category not found"

// CategoryInput carries the fields of a new category. An empty Color falls
// back to the default.
type CategoryInput struct {
	Name  string
	Type  models.Kind
	Color string
	Icon  *string
}

func (s *Service) CreateCategory(ctx context.Context, owner id.UserID, in CategoryInput) (_ *models.Category, err error) {
	ctx, span := tracing.Start(ctx, "ledger.CreateCategory")
	defer func() { tracing.End(span, err) }()

	c, err := models.NewCategory(id.CategoryID(uuid.New()), owner, in.Name, in.Type, in.Color, in.Icon, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, translate(err, categoryNotFound)
	}
	s.committed(ctx, entityCategory, opCreate, owner, c.ID.String())
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) (*models.Category, error) {
	c, err := s.store.GetCategory(ctx, owner, categoryID)
	if err != nil {
		return nil, translate(err, categoryNotFound)
	}
	return c, nil
}

// ListCategories returns the owner's categories by name, optionally only
// those of one kind.
func (s *Service) ListCategories(ctx context.Context, owner id.UserID, kind *models.Kind) ([]*models.Category, error) {
	list, err := s.store.ListCategories(ctx, owner, kind)
	if err != nil {
		return nil, translate(err, categoryNotFound)
	}
	return list, nil
}

func (s *Service) UpdateCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID, patch models.CategoryPatch) (_ *models.Category, err error) {
	ctx, span := tracing.Start(ctx, "ledger.UpdateCategory")
	defer func() { tracing.End(span, err) }()

	var updated *models.Category
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.store.GetCategory(ctx, owner, categoryID)
		if err != nil {
			return err
		}
		if err := c.Apply(patch); err != nil {
			return err
		}
		if err := s.store.UpdateCategory(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, translate(err, categoryNotFound)
	}
	s.committed(ctx, entityCategory, opUpdate, owner, categoryID.String())
	return updated, nil
}

// DeleteCategory refuses while any transaction or budget still points at the
// category.
func (s *Service) DeleteCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.DeleteCategory")
	defer func() { tracing.End(span, err) }()

	if err := s.store.DeleteCategory(ctx, owner, categoryID); err != nil {
		if errors.Is(err, sentinel.ErrReferenced) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "Category is used by existing transactions or budgets")
		}
		return translate(err, categoryNotFound)
	}
	s.committed(ctx, entityCategory, opDelete, owner, categoryID.String())
	return nil
}
