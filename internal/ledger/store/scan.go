package store

import (
	"database/sql"

	"github.com/google/uuid"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
)

type categoryRow struct {
	id, userID uuid.UUID
	name, kind string
	color      string
	icon       sql.NullString
	category   models.Category
}

func (r *categoryRow) dest() []any {
	return []any{&r.id, &r.userID, &r.name, &r.kind, &r.color, &r.icon, &r.category.CreatedAt}
}

func (r *categoryRow) build() models.Category {
	c := r.category
	c.ID = id.CategoryID(r.id)
	c.UserID = id.UserID(r.userID)
	c.Name = r.name
	c.Type = models.Kind(r.kind)
	c.Color = r.color
	c.Icon = nullable(r.icon)
	return c
}

type merchantRow struct {
	id, userID                   uuid.UUID
	name                         string
	categoryName, website, notes sql.NullString
	merchant                     models.Merchant
}

func (r *merchantRow) dest() []any {
	return []any{&r.id, &r.userID, &r.name, &r.categoryName, &r.website, &r.notes, &r.merchant.CreatedAt}
}

func (r *merchantRow) build() models.Merchant {
	m := r.merchant
	m.ID = id.MerchantID(r.id)
	m.UserID = id.UserID(r.userID)
	m.Name = r.name
	m.CategoryName = nullable(r.categoryName)
	m.Website = nullable(r.website)
	m.Notes = nullable(r.notes)
	return m
}

func scanCategory(row scanner) (*models.Category, error) {
	var r categoryRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	c := r.build()
	return &c, nil
}

func scanMerchant(row scanner) (*models.Merchant, error) {
	var r merchantRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	m := r.build()
	return &m, nil
}

func scanTransaction(row scanner) (*models.TransactionDetails, error) {
	var (
		d                                    models.TransactionDetails
		txID, userID, categoryID, merchantID uuid.UUID
		kind                                 string
		description, notes, receipt          sql.NullString
		updatedAt                            sql.NullTime
		c                                    categoryRow
		m                                    merchantRow
	)
	dest := []any{&txID, &userID, &d.Date, &kind, &d.Amount, &description, &notes, &receipt,
		&categoryID, &merchantID, &d.CreatedAt, &updatedAt}
	dest = append(dest, c.dest()...)
	dest = append(dest, m.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.ID = id.TransactionID(txID)
	d.UserID = id.UserID(userID)
	d.Date = models.DateOnly(d.Date)
	d.Type = models.Kind(kind)
	d.Description = nullable(description)
	d.Notes = nullable(notes)
	d.ReceiptURL = nullable(receipt)
	d.CategoryID = id.CategoryID(categoryID)
	d.MerchantID = id.MerchantID(merchantID)
	if updatedAt.Valid {
		t := updatedAt.Time
		d.UpdatedAt = &t
	}
	d.Category = c.build()
	d.Merchant = m.build()
	return &d, nil
}

func scanBudget(row scanner) (*models.BudgetDetails, error) {
	var (
		d                            models.BudgetDetails
		budgetID, userID, categoryID uuid.UUID
		updatedAt                    sql.NullTime
		c                            categoryRow
	)
	dest := []any{&budgetID, &userID, &categoryID, &d.Amount, &d.Month, &d.Year, &d.AlertThreshold,
		&d.CreatedAt, &updatedAt}
	dest = append(dest, c.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.ID = id.BudgetID(budgetID)
	d.UserID = id.UserID(userID)
	d.CategoryID = id.CategoryID(categoryID)
	if updatedAt.Valid {
		t := updatedAt.Time
		d.UpdatedAt = &t
	}
	d.Category = c.build()
	return &d, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
