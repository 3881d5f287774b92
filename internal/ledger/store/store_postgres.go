package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"coinquest/internal/ledger/models"
	"coinquest/internal/platform/postgres"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/platform/tx"
)

// PostgresStore persists ledger entities in PostgreSQL. Foreign keys use
// ON DELETE RESTRICT, so deleting a referenced category or merchant fails
// with ErrReferenced.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	categoryColumns    = `c.id, c.user_id, c.name, c.type, c.color, c.icon, c.created_at`
	merchantColumns    = `m.id, m.user_id, m.name, m.category_name, m.website, m.notes, m.created_at`
	transactionColumns = `t.id, t.user_id, t.date, t.type, t.amount::float8, t.description, t.notes, t.receipt_url, t.category_id, t.merchant_id, t.created_at, t.updated_at`
	budgetColumns      = `b.id, b.user_id, b.category_id, b.amount::float8, b.month, b.year, b.alert_threshold, b.created_at, b.updated_at`

	transactionSelect = `SELECT ` + transactionColumns + `, ` + categoryColumns + `, ` + merchantColumns + `
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		JOIN merchants m ON m.id = t.merchant_id`

	budgetSelect = `SELECT ` + budgetColumns + `, ` + categoryColumns + `
		FROM budgets b
		JOIN categories c ON c.id = b.category_id`
)

type scanner interface {
	Scan(dest ...any) error
}

// Categories

func (s *PostgresStore) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, color, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(c.ID), uuid.UUID(c.UserID), c.Name, string(c.Type), c.Color, c.Icon, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) (*models.Category, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1 AND c.user_id = $2`,
		uuid.UUID(categoryID), uuid.UUID(owner))
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, owner id.UserID, kind *models.Kind) ([]*models.Category, error) {
	q := newQuery(uuid.UUID(owner))
	where := `c.user_id = $1`
	if kind != nil {
		where += ` AND c.type = ` + q.arg(string(*kind))
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE `+where+` ORDER BY c.name, c.created_at`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE categories SET name = $3, color = $4, icon = $5
		WHERE id = $1 AND user_id = $2`,
		uuid.UUID(c.ID), uuid.UUID(c.UserID), c.Name, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, uuid.UUID(categoryID), uuid.UUID(owner))
	if err != nil {
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return fmt.Errorf("delete category: %w", sentinel.ErrReferenced)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// Merchants

func (s *PostgresStore) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO merchants (id, user_id, name, category_name, website, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(m.ID), uuid.UUID(m.UserID), m.Name, m.CategoryName, m.Website, m.Notes, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) (*models.Merchant, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants m WHERE m.id = $1 AND m.user_id = $2`,
		uuid.UUID(merchantID), uuid.UUID(owner))
	m, err := scanMerchant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find merchant: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListMerchants(ctx context.Context, owner id.UserID) ([]*models.Merchant, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants m WHERE m.user_id = $1 ORDER BY m.name, m.created_at`,
		uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Merchant, 0)
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateMerchant(ctx context.Context, m *models.Merchant) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE merchants SET name = $3, category_name = $4, website = $5, notes = $6
		WHERE id = $1 AND user_id = $2`,
		uuid.UUID(m.ID), uuid.UUID(m.UserID), m.Name, m.CategoryName, m.Website, m.Notes)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM merchants WHERE id = $1 AND user_id = $2`, uuid.UUID(merchantID), uuid.UUID(owner))
	if err != nil {
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return fmt.Errorf("delete merchant: %w", sentinel.ErrReferenced)
		}
		return fmt.Errorf("delete merchant: %w", err)
	}
	return requireRow(res)
}

// Transactions

func (s *PostgresStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, date, type, amount, description, notes, receipt_url, category_id, merchant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(t.ID), uuid.UUID(t.UserID), t.Date, string(t.Type), t.Amount,
		t.Description, t.Notes, t.ReceiptURL, uuid.UUID(t.CategoryID), uuid.UUID(t.MerchantID),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return fmt.Errorf("insert transaction: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) (*models.TransactionDetails, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`,
		uuid.UUID(transactionID), uuid.UUID(owner))
	d, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return d, nil
}

// ListTransactions returns the owner's matching transactions, newest date first.
func (s *PostgresStore) ListTransactions(ctx context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) ([]*models.TransactionDetails, error) {
	q := newQuery(uuid.UUID(owner))
	conds := []string{`t.user_id = $1`}
	if filter.StartDate != nil {
		conds = append(conds, `t.date >= `+q.arg(models.DateOnly(*filter.StartDate)))
	}
	if filter.EndDate != nil {
		conds = append(conds, `t.date <= `+q.arg(models.DateOnly(*filter.EndDate)))
	}
	if filter.Type != nil {
		conds = append(conds, `t.type = `+q.arg(string(*filter.Type)))
	}
	if len(filter.CategoryIDs) > 0 {
		ids := make([]string, len(filter.CategoryIDs))
		for i, c := range filter.CategoryIDs {
			ids[i] = c.String()
		}
		conds = append(conds, `t.category_id = ANY(`+q.arg(pq.Array(ids))+`::uuid[])`)
	}
	if len(filter.MerchantIDs) > 0 {
		ids := make([]string, len(filter.MerchantIDs))
		for i, m := range filter.MerchantIDs {
			ids[i] = m.String()
		}
		conds = append(conds, `t.merchant_id = ANY(`+q.arg(pq.Array(ids))+`::uuid[])`)
	}
	if filter.MinAmount != nil {
		conds = append(conds, `t.amount >= `+q.arg(*filter.MinAmount))
	}
	if filter.MaxAmount != nil {
		conds = append(conds, `t.amount <= `+q.arg(*filter.MaxAmount))
	}
	if filter.Search != "" {
		p := q.arg("%" + escapeLike(filter.Search) + "%")
		conds = append(conds, `(t.description ILIKE `+p+` OR t.notes ILIKE `+p+` OR m.name ILIKE `+p+`)`)
	}

	query := transactionSelect + ` WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY t.date DESC, t.created_at DESC OFFSET ` + q.arg(page.Skip)
	if page.Limit > 0 {
		query += ` LIMIT ` + q.arg(page.Limit)
	}

	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.TransactionDetails, 0)
	for rows.Next() {
		d, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE transactions
		SET date = $3, type = $4, amount = $5, description = $6, notes = $7, receipt_url = $8,
		    category_id = $9, merchant_id = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2`,
		uuid.UUID(t.ID), uuid.UUID(t.UserID), t.Date, string(t.Type), t.Amount,
		t.Description, t.Notes, t.ReceiptURL, uuid.UUID(t.CategoryID), uuid.UUID(t.MerchantID), t.UpdatedAt)
	if err != nil {
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return fmt.Errorf("update transaction: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, uuid.UUID(transactionID), uuid.UUID(owner))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// Budgets

func (s *PostgresStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, month, year, alert_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(b.ID), uuid.UUID(b.UserID), uuid.UUID(b.CategoryID), b.Amount, b.Month, b.Year,
		b.AlertThreshold, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return fmt.Errorf("insert budget: %w", sentinel.ErrConflict)
		}
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return fmt.Errorf("insert budget: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) (*models.BudgetDetails, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		budgetSelect+` WHERE b.id = $1 AND b.user_id = $2`, uuid.UUID(budgetID), uuid.UUID(owner))
	d, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find budget: %w", err)
	}
	return d, nil
}

// ListBudgets returns the owner's matching budgets, latest period first.
func (s *PostgresStore) ListBudgets(ctx context.Context, owner id.UserID, filter models.BudgetFilter) ([]*models.BudgetDetails, error) {
	q := newQuery(uuid.UUID(owner))
	conds := []string{`b.user_id = $1`}
	if filter.Month != nil {
		conds = append(conds, `b.month = `+q.arg(*filter.Month))
	}
	if filter.Year != nil {
		conds = append(conds, `b.year = `+q.arg(*filter.Year))
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		budgetSelect+` WHERE `+strings.Join(conds, " AND ")+` ORDER BY b.year DESC, b.month DESC, b.created_at`,
		q.args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]*models.BudgetDetails, 0)
	for rows.Next() {
		d, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, b *models.Budget) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE budgets SET amount = $3, alert_threshold = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`,
		uuid.UUID(b.ID), uuid.UUID(b.UserID), b.Amount, b.AlertThreshold, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, uuid.UUID(budgetID), uuid.UUID(owner))
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

// Reports

func (s *PostgresStore) MonthlyTotals(ctx context.Context, owner id.UserID, month, year int) (models.MonthlyTotals, error) {
	start, end := models.MonthBounds(month, year)
	var totals models.MonthlyTotals
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::float8,
		       COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::float8,
		       COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3`,
		uuid.UUID(owner), start, end).Scan(&totals.Income, &totals.Expenses, &totals.Count)
	if err != nil {
		return models.MonthlyTotals{}, fmt.Errorf("monthly totals: %w", err)
	}
	totals.Income = models.Round2(totals.Income)
	totals.Expenses = models.Round2(totals.Expenses)
	return totals, nil
}

func (s *PostgresStore) BudgetTotal(ctx context.Context, owner id.UserID, month, year int) (float64, error) {
	var total float64
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::float8 FROM budgets WHERE user_id = $1 AND month = $2 AND year = $3`,
		uuid.UUID(owner), month, year).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("budget total: %w", err)
	}
	return models.Round2(total), nil
}

// CategorySpending groups the month's expense transactions by category.
// Categories without expenses in the month are omitted.
func (s *PostgresStore) CategorySpending(ctx context.Context, owner id.UserID, month, year int) ([]models.CategorySpend, error) {
	start, end := models.MonthBounds(month, year)
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT c.id, c.name, SUM(t.amount)::float8, b.amount::float8
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		LEFT JOIN budgets b
		       ON b.category_id = c.id AND b.user_id = t.user_id AND b.month = $4 AND b.year = $5
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
		GROUP BY c.id, c.name, b.amount
		ORDER BY SUM(t.amount) DESC, c.name`,
		uuid.UUID(owner), start, end, month, year)
	if err != nil {
		return nil, fmt.Errorf("category spending: %w", err)
	}
	defer rows.Close()

	out := make([]models.CategorySpend, 0)
	for rows.Next() {
		var (
			spend      models.CategorySpend
			categoryID uuid.UUID
			budget     sql.NullFloat64
		)
		if err := rows.Scan(&categoryID, &spend.CategoryName, &spend.Amount, &budget); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		spend.CategoryID = id.CategoryID(categoryID)
		spend.Amount = models.Round2(spend.Amount)
		if budget.Valid {
			amount := budget.Float64
			spend.BudgetAmount = &amount
		}
		out = append(out, spend)
	}
	return out, rows.Err()
}

// query accumulates positional arguments and hands out their placeholders.
type query struct {
	args []any
}

func newQuery(first any) *query {
	return &query{args: []any{first}}
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
