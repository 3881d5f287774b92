package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
)

// InMemoryStore keeps every ledger entity in process memory behind one lock.
// Ownership is checked on every read and write: a record owned by another
// user is reported as ErrNotFound.
type InMemoryStore struct {
	mu           sync.RWMutex
	categories   map[id.CategoryID]*models.Category
	merchants    map[id.MerchantID]*models.Merchant
	transactions map[id.TransactionID]*models.Transaction
	budgets      map[id.BudgetID]*models.Budget
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		categories:   make(map[id.CategoryID]*models.Category),
		merchants:    make(map[id.MerchantID]*models.Merchant),
		transactions: make(map[id.TransactionID]*models.Transaction),
		budgets:      make(map[id.BudgetID]*models.Budget),
	}
}

// Categories

func (s *InMemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *c
	s.categories[c.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetCategory(_ context.Context, owner id.UserID, categoryID id.CategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok || c.UserID != owner {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *InMemoryStore) ListCategories(_ context.Context, owner id.UserID, kind *models.Kind) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0)
	for _, c := range s.categories {
		if c.UserID != owner || (kind != nil && c.Type != *kind) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *InMemoryStore) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.UserID != c.UserID {
		return sentinel.ErrNotFound
	}
	stored := *c
	s.categories[c.ID] = &stored
	return nil
}

func (s *InMemoryStore) DeleteCategory(_ context.Context, owner id.UserID, categoryID id.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[categoryID]
	if !ok || c.UserID != owner {
		return sentinel.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.CategoryID == categoryID {
			return fmt.Errorf("category used by transaction: %w", sentinel.ErrReferenced)
		}
	}
	for _, b := range s.budgets {
		if b.CategoryID == categoryID {
			return fmt.Errorf("category used by budget: %w", sentinel.ErrReferenced)
		}
	}
	delete(s.categories, categoryID)
	return nil
}

// Merchants

func (s *InMemoryStore) CreateMerchant(_ context.Context, m *models.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *m
	s.merchants[m.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetMerchant(_ context.Context, owner id.UserID, merchantID id.MerchantID) (*models.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.merchants[merchantID]
	if !ok || m.UserID != owner {
		return nil, sentinel.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (s *InMemoryStore) ListMerchants(_ context.Context, owner id.UserID) ([]*models.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Merchant, 0)
	for _, m := range s.merchants {
		if m.UserID != owner {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *InMemoryStore) UpdateMerchant(_ context.Context, m *models.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.merchants[m.ID]
	if !ok || existing.UserID != m.UserID {
		return sentinel.ErrNotFound
	}
	stored := *m
	s.merchants[m.ID] = &stored
	return nil
}

func (s *InMemoryStore) DeleteMerchant(_ context.Context, owner id.UserID, merchantID id.MerchantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.merchants[merchantID]
	if !ok || m.UserID != owner {
		return sentinel.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.MerchantID == merchantID {
			return fmt.Errorf("merchant used by transaction: %w", sentinel.ErrReferenced)
		}
	}
	delete(s.merchants, merchantID)
	return nil
}

// Transactions

func (s *InMemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRefs(t.UserID, t.CategoryID, t.MerchantID); err != nil {
		return err
	}
	stored := *t
	s.transactions[t.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetTransaction(_ context.Context, owner id.UserID, transactionID id.TransactionID) (*models.TransactionDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok || t.UserID != owner {
		return nil, sentinel.ErrNotFound
	}
	return s.details(t), nil
}

// ListTransactions returns the owner's matching transactions, newest date first.
func (s *InMemoryStore) ListTransactions(_ context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) ([]*models.TransactionDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*models.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID != owner {
			continue
		}
		merchantName := ""
		if m, ok := s.merchants[t.MerchantID]; ok {
			merchantName = m.Name
		}
		if filter.Matches(t, merchantName) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Date.After(matched[j].Date)
	})

	out := make([]*models.TransactionDetails, 0)
	if page.Skip >= len(matched) {
		return out, nil
	}
	end := len(matched)
	if page.Limit > 0 && page.Skip+page.Limit < end {
		end = page.Skip + page.Limit
	}
	for _, t := range matched[page.Skip:end] {
		out = append(out, s.details(t))
	}
	return out, nil
}

func (s *InMemoryStore) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return sentinel.ErrNotFound
	}
	if err := s.checkRefs(t.UserID, t.CategoryID, t.MerchantID); err != nil {
		return err
	}
	stored := *t
	s.transactions[t.ID] = &stored
	return nil
}

func (s *InMemoryStore) DeleteTransaction(_ context.Context, owner id.UserID, transactionID id.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[transactionID]
	if !ok || t.UserID != owner {
		return sentinel.ErrNotFound
	}
	delete(s.transactions, transactionID)
	return nil
}

// Budgets

func (s *InMemoryStore) CreateBudget(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories[b.CategoryID]; !ok || c.UserID != b.UserID {
		return fmt.Errorf("budget category: %w", sentinel.ErrNotFound)
	}
	for _, existing := range s.budgets {
		if existing.UserID == b.UserID && existing.CategoryID == b.CategoryID &&
			existing.Month == b.Month && existing.Year == b.Year {
			return fmt.Errorf("budget for period: %w", sentinel.ErrConflict)
		}
	}
	stored := *b
	s.budgets[b.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetBudget(_ context.Context, owner id.UserID, budgetID id.BudgetID) (*models.BudgetDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != owner {
		return nil, sentinel.ErrNotFound
	}
	return s.budgetDetails(b), nil
}

// ListBudgets returns the owner's matching budgets, latest period first.
func (s *InMemoryStore) ListBudgets(_ context.Context, owner id.UserID, filter models.BudgetFilter) ([]*models.BudgetDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*models.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == owner && filter.Matches(b) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		if matched[i].Month != matched[j].Month {
			return matched[i].Month > matched[j].Month
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	out := make([]*models.BudgetDetails, 0, len(matched))
	for _, b := range matched {
		out = append(out, s.budgetDetails(b))
	}
	return out, nil
}

func (s *InMemoryStore) UpdateBudget(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.budgets[b.ID]
	if !ok || existing.UserID != b.UserID {
		return sentinel.ErrNotFound
	}
	stored := *b
	s.budgets[b.ID] = &stored
	return nil
}

func (s *InMemoryStore) DeleteBudget(_ context.Context, owner id.UserID, budgetID id.BudgetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetID]
	if !ok || b.UserID != owner {
		return sentinel.ErrNotFound
	}
	delete(s.budgets, budgetID)
	return nil
}

// Reports

func (s *InMemoryStore) MonthlyTotals(_ context.Context, owner id.UserID, month, year int) (models.MonthlyTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start, end := models.MonthBounds(month, year)
	var totals models.MonthlyTotals
	for _, t := range s.transactions {
		if t.UserID != owner || t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		totals.Count++
		switch t.Type {
		case models.KindIncome:
			totals.Income += t.Amount
		case models.KindExpense:
			totals.Expenses += t.Amount
		}
	}
	totals.Income = models.Round2(totals.Income)
	totals.Expenses = models.Round2(totals.Expenses)
	return totals, nil
}

func (s *InMemoryStore) BudgetTotal(_ context.Context, owner id.UserID, month, year int) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, b := range s.budgets {
		if b.UserID == owner && b.Month == month && b.Year == year {
			total += b.Amount
		}
	}
	return models.Round2(total), nil
}

// CategorySpending groups the month's expense transactions by category.
// Categories without expenses in the month are omitted.
func (s *InMemoryStore) CategorySpending(_ context.Context, owner id.UserID, month, year int) ([]models.CategorySpend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start, end := models.MonthBounds(month, year)
	sums := make(map[id.CategoryID]float64)
	for _, t := range s.transactions {
		if t.UserID != owner || t.Type != models.KindExpense || t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		sums[t.CategoryID] += t.Amount
	}

	out := make([]models.CategorySpend, 0, len(sums))
	for categoryID, amount := range sums {
		spend := models.CategorySpend{CategoryID: categoryID, Amount: models.Round2(amount)}
		if c, ok := s.categories[categoryID]; ok {
			spend.CategoryName = c.Name
		}
		for _, b := range s.budgets {
			if b.UserID == owner && b.CategoryID == categoryID && b.Month == month && b.Year == year {
				budget := b.Amount
				spend.BudgetAmount = &budget
				break
			}
		}
		out = append(out, spend)
	}
	sortSpending(out)
	return out, nil
}

func sortSpending(out []models.CategorySpend) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount == out[j].Amount {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].Amount > out[j].Amount
	})
}

func (s *InMemoryStore) checkRefs(owner id.UserID, categoryID id.CategoryID, merchantID id.MerchantID) error {
	if c, ok := s.categories[categoryID]; !ok || c.UserID != owner {
		return fmt.Errorf("transaction category: %w", sentinel.ErrNotFound)
	}
	if m, ok := s.merchants[merchantID]; !ok || m.UserID != owner {
		return fmt.Errorf("transaction merchant: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *InMemoryStore) details(t *models.Transaction) *models.TransactionDetails {
	d := &models.TransactionDetails{Transaction: *t}
	if c, ok := s.categories[t.CategoryID]; ok {
		d.Category = *c
	}
	if m, ok := s.merchants[t.MerchantID]; ok {
		d.Merchant = *m
	}
	return d
}

func (s *InMemoryStore) budgetDetails(b *models.Budget) *models.BudgetDetails {
	d := &models.BudgetDetails{Budget: *b}
	if c, ok := s.categories[b.CategoryID]; ok {
		d.Category = *c
	}
	return d
}
