// Package service aggregates a user's monthly figures for the dashboard.
// Every build recomputes from stored transactions and budgets.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"coinquest/internal/dashboard/metrics"
	"coinquest/internal/ledger/models"
	"coinquest/internal/platform/tracing"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

// Reader is the read side of the ledger store.
type Reader interface {
	MonthlyTotals(ctx context.Context, owner id.UserID, month, year int) (models.MonthlyTotals, error)
	BudgetTotal(ctx context.Context, owner id.UserID, month, year int) (float64, error)
	CategorySpending(ctx context.Context, owner id.UserID, month, year int) ([]models.CategorySpend, error)
	ListTransactions(ctx context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) ([]*models.TransactionDetails, error)
}

// MonthlyOverview summarises one month. BudgetUsed mirrors Expenses.
type MonthlyOverview struct {
	Income            float64
	Expenses          float64
	Balance           float64
	BudgetUsed        float64
	BudgetTotal       float64
	TransactionsCount int
}

// CategorySpending is one category's expenses against its budget.
// BudgetAmount and PercentageOfBudget are nil when no budget matches.
type CategorySpending struct {
	CategoryID         id.CategoryID
	CategoryName       string
	Amount             float64
	BudgetAmount       *float64
	PercentageOfBudget *float64
}

type Dashboard struct {
	Month              int
	Year               int
	Overview           MonthlyOverview
	CategorySpending   []CategorySpending
	RecentTransactions []*models.TransactionDetails
}

type Service struct {
	reader  Reader
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

func New(reader Reader, opts ...Option) (*Service, error) {
	if reader == nil {
		return nil, errors.New("dashboard reader is required")
	}
	s := &Service{reader: reader}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Build runs the overview, spending, budget and recent-transaction queries
// concurrently and combines them.
func (s *Service) Build(ctx context.Context, owner id.UserID, month, year int) (_ *Dashboard, err error) {
	ctx, span := tracing.Start(ctx, "dashboard.Build")
	defer func() { tracing.End(span, err) }()

	if err := models.ValidateMonth(month); err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}
	if year < 1 || year > 9999 {
		return nil, dErrors.New(dErrors.CodeValidation, "Year is out of range")
	}

	start := time.Now()
	defer func() { s.metrics.ObserveBuild(time.Since(start)) }()

	var (
		totals      models.MonthlyTotals
		budgetTotal float64
		spending    []models.CategorySpend
		recent      []*models.TransactionDetails
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.reader.MonthlyTotals(gctx, owner, month, year)
		return err
	})
	g.Go(func() error {
		var err error
		budgetTotal, err = s.reader.BudgetTotal(gctx, owner, month, year)
		return err
	})
	g.Go(func() error {
		var err error
		spending, err = s.reader.CategorySpending(gctx, owner, month, year)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.reader.ListTransactions(gctx, owner, models.TransactionFilter{}, models.Page{Limit: RecentLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard build failed",
			"user_id", owner.String(),
			"month", month,
			"year", year,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}

	return &Dashboard{
		Month: month,
		Year:  year,
		Overview: MonthlyOverview{
			Income:            totals.Income,
			Expenses:          totals.Expenses,
			Balance:           models.Round2(totals.Income - totals.Expenses),
			BudgetUsed:        totals.Expenses,
			BudgetTotal:       budgetTotal,
			TransactionsCount: totals.Count,
		},
		CategorySpending:   toSpending(spending),
		RecentTransactions: recent,
	}, nil
}

func toSpending(in []models.CategorySpend) []CategorySpending {
	out := make([]CategorySpending, 0, len(in))
	for _, cs := range in {
		item := CategorySpending{
			CategoryID:   cs.CategoryID,
			CategoryName: cs.CategoryName,
			Amount:       cs.Amount,
			BudgetAmount: cs.BudgetAmount,
		}
		if cs.BudgetAmount != nil && *cs.BudgetAmount > 0 {
			pct := cs.Amount / *cs.BudgetAmount * 100
			item.PercentageOfBudget = &pct
		}
		out = append(out, item)
	}
	return out
}
