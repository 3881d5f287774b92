package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"coinquest/internal/ledger/metrics"
	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/platform/tx"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) (*models.Category, error)
	ListCategories(ctx context.Context, owner id.UserID, kind *models.Kind) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) error
}

type MerchantStore interface {
	CreateMerchant(ctx context.Context, m *models.Merchant) error
	GetMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) (*models.Merchant, error)
	ListMerchants(ctx context.Context, owner id.UserID) ([]*models.Merchant, error)
	UpdateMerchant(ctx context.Context, m *models.Merchant) error
	DeleteMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) (*models.TransactionDetails, error)
	ListTransactions(ctx context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) ([]*models.TransactionDetails, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) error
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b *models.Budget) error
	GetBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) (*models.BudgetDetails, error)
	ListBudgets(ctx context.Context, owner id.UserID, filter models.BudgetFilter) ([]*models.BudgetDetails, error)
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) error
}

// Store is satisfied by both the in-memory and the Postgres ledger stores.
type Store interface {
	CategoryStore
	MerchantStore
	TransactionStore
	BudgetStore
}

// TxRunner groups the reads and the write of one operation into a single
// database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	entityCategory    = "category"
	entityMerchant    = "merchant"
	entityTransaction = "transaction"
	entityBudget      = "budget"

	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Service owns the owner-scoped CRUD rules for categories, merchants,
// transactions and budgets. Every method takes the caller's user id and never
// reveals whether a record exists under another owner.
type Service struct {
	store   Store
	tx      TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the transaction runner. Without it operations run
// directly against the store.
func WithTxRunner(runner TxRunner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	s := &Service{store: store, tx: tx.NoopRunner{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

func (s *Service) committed(ctx context.Context, entity, op string, owner id.UserID, entityID string) {
	s.metrics.IncrementMutation(entity, op)
	s.logger.InfoContext(ctx, entity+" "+op+"d",
		"user_id", owner.String(),
		entity+"_id", entityID,
	)
}

// translate maps store sentinels and model invariants onto domain errors.
// notFound is the message used when the record is absent or not owned.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.From(err); ok {
		return dErrors.InvariantToValidation(err)
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrReferenced):
		return dErrors.Wrap(err, dErrors.CodeConflict, "Cannot delete: still referenced by existing records")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "Record already exists")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "ledger store failure")
}
