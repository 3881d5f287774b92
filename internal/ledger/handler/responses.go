package handler

import (
	"time"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/httputil"
)

type CategoryResponse struct {
	ID        id.CategoryID `json:"id"`
	UserID    id.UserID     `json:"user_id"`
	Name      string        `json:"name"`
	Type      models.Kind   `json:"type"`
	Color     string        `json:"color"`
	Icon      *string       `json:"icon"`
	CreatedAt time.Time     `json:"created_at"`
}

type MerchantResponse struct {
	ID           id.MerchantID `json:"id"`
	UserID       id.UserID     `json:"user_id"`
	Name         string        `json:"name"`
	CategoryName *string       `json:"category_name"`
	Website      *string       `json:"website"`
	Notes        *string       `json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`
}

// TransactionResponse embeds the referenced category and merchant.
type TransactionResponse struct {
	ID          id.TransactionID `json:"id"`
	UserID      id.UserID        `json:"user_id"`
	Date        string           `json:"date"`
	Type        models.Kind      `json:"type"`
	Amount      float64          `json:"amount"`
	Description *string          `json:"description"`
	Notes       *string          `json:"notes"`
	ReceiptURL  *string          `json:"receipt_url"`
	CategoryID  id.CategoryID    `json:"category_id"`
	MerchantID  id.MerchantID    `json:"merchant_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at"`
	Category    CategoryResponse `json:"category"`
	Merchant    MerchantResponse `json:"merchant"`
}

// BudgetResponse embeds the budgeted category.
type BudgetResponse struct {
	ID             id.BudgetID      `json:"id"`
	UserID         id.UserID        `json:"user_id"`
	CategoryID     id.CategoryID    `json:"category_id"`
	Amount         float64          `json:"amount"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	AlertThreshold float64          `json:"alert_threshold"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at"`
	Category       CategoryResponse `json:"category"`
}

func ToCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      c.Type,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
	}
}

func ToMerchantResponse(m *models.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		CategoryName: m.CategoryName,
		Website:      m.Website,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
	}
}

// ToTransactionResponse is shared with the dashboard's recent list.
func ToTransactionResponse(d *models.TransactionDetails) TransactionResponse {
	return TransactionResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Date:        d.Date.Format(httputil.DateLayout),
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Notes:       d.Notes,
		ReceiptURL:  d.ReceiptURL,
		CategoryID:  d.CategoryID,
		MerchantID:  d.MerchantID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Category:    ToCategoryResponse(&d.Category),
		Merchant:    ToMerchantResponse(&d.Merchant),
	}
}

func ToBudgetResponse(d *models.BudgetDetails) BudgetResponse {
	return BudgetResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		CategoryID:     d.CategoryID,
		Amount:         d.Amount,
		Month:          d.Month,
		Year:           d.Year,
		AlertThreshold: d.AlertThreshold,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Category:       ToCategoryResponse(&d.Category),
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
