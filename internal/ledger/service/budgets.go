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

const budgetNotFound = "Budget not found"

// BudgetInput carries the fields of a new budget. A nil AlertThreshold
// defaults to 0.8.
type BudgetInput struct {
	CategoryID     id.CategoryID
	Amount         float64
	Month          int
	Year           int
	AlertThreshold *float64
}

// CreateBudget stores a budget for one of owner's categories. Only one budget
// may exist per category and month.
func (s *Service) CreateBudget(ctx context.Context, owner id.UserID, in BudgetInput) (_ *models.BudgetDetails, err error) {
	ctx, span := tracing.Start(ctx, "ledger.CreateBudget")
	defer func() { tracing.End(span, err) }()

	b, err := models.NewBudget(id.BudgetID(uuid.New()), owner, in.CategoryID, in.Amount, in.Month, in.Year, in.AlertThreshold, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}

	var created *models.BudgetDetails
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.GetCategory(ctx, owner, b.CategoryID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, categoryNotFound)
			}
			return err
		}
		if err := s.store.CreateBudget(ctx, b); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "Budget already exists for this category and month")
			}
			return err
		}
		d, err := s.store.GetBudget(ctx, owner, b.ID)
		if err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, translate(err, categoryNotFound)
	}
	s.committed(ctx, entityBudget, opCreate, owner, b.ID.String())
	return created, nil
}

func (s *Service) GetBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) (*models.BudgetDetails, error) {
	d, err := s.store.GetBudget(ctx, owner, budgetID)
	if err != nil {
		return nil, translate(err, budgetNotFound)
	}
	return d, nil
}

// ListBudgets returns the owner's budgets, latest period first.
func (s *Service) ListBudgets(ctx context.Context, owner id.UserID, filter models.BudgetFilter) ([]*models.BudgetDetails, error) {
	if filter.Month != nil {
		if err := models.ValidateMonth(*filter.Month); err != nil {
			return nil, dErrors.InvariantToValidation(err)
		}
	}
	list, err := s.store.ListBudgets(ctx, owner, filter)
	if err != nil {
		return nil, translate(err, budgetNotFound)
	}
	return list, nil
}

func (s *Service) UpdateBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID, patch models.BudgetPatch) (_ *models.BudgetDetails, err error) {
	ctx, span := tracing.Start(ctx, "ledger.UpdateBudget")
	defer func() { tracing.End(span, err) }()

	var updated *models.BudgetDetails
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetBudget(ctx, owner, budgetID)
		if err != nil {
			return err
		}
		b := current.Budget
		if err := b.Apply(patch, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.UpdateBudget(ctx, &b); err != nil {
			return err
		}
		updated = &models.BudgetDetails{Budget: b, Category: current.Category}
		return nil
	})
	if err != nil {
		return nil, translate(err, budgetNotFound)
	}
	s.committed(ctx, entityBudget, opUpdate, owner, budgetID.String())
	return updated, nil
}

func (s *Service) DeleteBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) (err error) {
	ctx, span := tracing.Start(ctx, "ledger.DeleteBudget")
	defer func() { tracing.End(span, err) }()

	if err := s.store.DeleteBudget(ctx, owner, budgetID); err != nil {
		return translate(err, budgetNotFound)
	}
	s.committed(ctx, entityBudget, opDelete, owner, budgetID.String())
	return nil
}
