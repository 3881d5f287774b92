package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinquest/internal/dashboard/metrics"
	"coinquest/internal/ledger/models"
	"coinquest/internal/ledger/store"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

type fixture struct {
	store *store.InMemoryStore
	owner id.UserID
	now   time.Time
}

func newFixture() *fixture {
	return &fixture{
		store: store.NewInMemory(),
		owner: id.UserID(uuid.New()),
		now:   time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) category(t *testing.T, name string, kind models.Kind) *models.Category {
	t.Helper()
	c, err := models.NewCategory(id.CategoryID(uuid.New()), f.owner, name, kind, "", nil, f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateCategory(context.Background(), c))
	return c
}

func (f *fixture) merchant(t *testing.T) *models.Merchant {
	t.Helper()
	name := "Anywhere"
	m, err := models.NewMerchant(id.MerchantID(uuid.New()), f.owner, models.MerchantPatch{Name: &name}, f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateMerchant(context.Background(), m))
	return m
}

func (f *fixture) transaction(t *testing.T, c *models.Category, m *models.Merchant, date time.Time, amount float64) {
	t.Helper()
	tx, err := models.NewTransaction(id.TransactionID(uuid.New()), f.owner, models.NewTransactionInput{
		Date: date, Type: c.Type, Amount: amount, CategoryID: c.ID, MerchantID: m.ID,
	}, f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateTransaction(context.Background(), tx))
}

func (f *fixture) budget(t *testing.T, c *models.Category, amount float64, month, year int) {
	t.Helper()
	b, err := models.NewBudget(id.BudgetID(uuid.New()), f.owner, c.ID, amount, month, year, nil, f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateBudget(context.Background(), b))
}

func june(day int) time.Time {
	return time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC)
}

func TestBuildMonthlyOverview(t *testing.T) {
	f := newFixture()
	salary := f.category(t, "Salary", models.KindIncome)
	groceries := f.category(t, "Groceries", models.KindExpense)
	m := f.merchant(t)
	f.transaction(t, salary, m, june(1), 500)
	f.transaction(t, groceries, m, june(12), 200)
	f.budget(t, groceries, 300, 6, 2024)

	reg := prometheus.NewRegistry()
	svc, err := New(f.store, WithMetrics(metrics.New(reg)))
	require.NoError(t, err)

	d, err := svc.Build(context.Background(), f.owner, 6, 2024)
	require.NoError(t, err)

	assert.Equal(t, MonthlyOverview{
		Income:            500,
		Expenses:          200,
		Balance:           300,
		BudgetUsed:        200,
		BudgetTotal:       300,
		TransactionsCount: 2,
	}, d.Overview)

	require.Len(t, d.CategorySpending, 1)
	spend := d.CategorySpending[0]
	assert.Equal(t, groceries.ID, spend.CategoryID)
	assert.Equal(t, 200.0, spend.Amount)
	require.NotNil(t, spend.BudgetAmount)
	assert.Equal(t, 300.0, *spend.BudgetAmount)
	require.NotNil(t, spend.PercentageOfBudget)
	assert.InDelta(t, 200.0/300.0*100, *spend.PercentageOfBudget, 1e-9)
	assert.NotEqual(t, 66.67, *spend.PercentageOfBudget, "percentage is reported unrounded")

	assert.Len(t, d.RecentTransactions, 2)
	count, err := testutil.GatherAndCount(reg, "coinquest_dashboard_build_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBuildCategorySpending(t *testing.T) {
	f := newFixture()
	rent := f.category(t, "Rent", models.KindExpense)
	fun := f.category(t, "Fun", models.KindExpense)
	unused := f.category(t, "Travel", models.KindExpense)
	m := f.merchant(t)
	f.transaction(t, rent, m, june(1), 900)
	f.transaction(t, fun, m, june(2), 40)
	f.transaction(t, fun, m, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), 1000)
	f.budget(t, unused, 500, 6, 2024)

	svc, err := New(f.store)
	require.NoError(t, err)
	d, err := svc.Build(context.Background(), f.owner, 6, 2024)
	require.NoError(t, err)

	require.Len(t, d.CategorySpending, 2, "category with a budget but no expenses is omitted")
	assert.Equal(t, "Rent", d.CategorySpending[0].CategoryName)
	assert.Equal(t, "Fun", d.CategorySpending[1].CategoryName)
	assert.Equal(t, 40.0, d.CategorySpending[1].Amount)
	for _, cs := range d.CategorySpending {
		assert.Nil(t, cs.BudgetAmount)
		assert.Nil(t, cs.PercentageOfBudget)
	}
	assert.Equal(t, 500.0, d.Overview.BudgetTotal)
}

func TestBuildRecentTransactionsAreCapped(t *testing.T) {
	f := newFixture()
	c := f.category(t, "Food", models.KindExpense)
	m := f.merchant(t)
	for day := 1; day <= 8; day++ {
		f.transaction(t, c, m, june(day), float64(day))
	}

	svc, err := New(f.store)
	require.NoError(t, err)
	d, err := svc.Build(context.Background(), f.owner, 1, 2020)
	require.NoError(t, err)

	require.Len(t, d.RecentTransactions, RecentLimit)
	assert.Equal(t, june(8), d.RecentTransactions[0].Date)
	assert.Equal(t, 0, d.Overview.TransactionsCount)
}

func TestBuildValidatesPeriod(t *testing.T) {
	svc, err := New(store.NewInMemory())
	require.NoError(t, err)

	_, err = svc.Build(context.Background(), id.UserID(uuid.New()), 13, 2024)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Build(context.Background(), id.UserID(uuid.New()), 6, 0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

type failingReader struct {
	*store.InMemoryStore
}

func (failingReader) BudgetTotal(context.Context, id.UserID, int, int) (float64, error) {
	return 0, errors.New("connection reset")
}

func TestBuildStoreFailureIsInternal(t *testing.T) {
	svc, err := New(failingReader{InMemoryStore: store.NewInMemory()})
	require.NoError(t, err)

	_, err = svc.Build(context.Background(), id.UserID(uuid.New()), 6, 2024)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
