package handler

import (
	"strings"
	"time"

	"coinquest/internal/ledger/models"
	"coinquest/internal/ledger/service"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
)

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`

	kind models.Kind
}

func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	kind, err := models.ParseKind(r.Type)
	if err != nil {
		return err
	}
	r.kind = kind
	return nil
}

func (r *CreateCategoryRequest) toInput() service.CategoryInput {
	in := service.CategoryInput{Name: r.Name, Type: r.kind, Icon: r.Icon}
	if r.Color != nil {
		in.Color = *r.Color
	}
	return in
}

// UpdateCategoryRequest is the body of PUT /api/categories/{id}. Type is not
// accepted: a category keeps its kind for life.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (r *UpdateCategoryRequest) Validate() error { return nil }

func (r *UpdateCategoryRequest) toPatch() models.CategoryPatch {
	return models.CategoryPatch{Name: r.Name, Color: r.Color, Icon: r.Icon}
}

// MerchantRequest is the body of POST and PUT /api/merchants. Name is
// required on create only.
type MerchantRequest struct {
	Name         *string `json:"name"`
	CategoryName *string `json:"category_name"`
	Website      *string `json:"website"`
	Notes        *string `json:"notes"`
}

func (r *MerchantRequest) Validate() error { return nil }

func (r *MerchantRequest) toPatch() models.MerchantPatch {
	return models.MerchantPatch{Name: r.Name, CategoryName: r.CategoryName, Website: r.Website, Notes: r.Notes}
}

// CreateTransactionRequest is the body of POST /api/transactions.
type CreateTransactionRequest struct {
	Date        string   `json:"date"`
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
	ReceiptURL  *string  `json:"receipt_url"`
	CategoryID  string   `json:"category_id"`
	MerchantID  string   `json:"merchant_id"`

	input models.NewTransactionInput
}

func (r *CreateTransactionRequest) Validate() error {
	date, err := requireDate(r.Date)
	if err != nil {
		return err
	}
	kind, err := models.ParseKind(r.Type)
	if err != nil {
		return err
	}
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	categoryID, err := id.ParseCategoryID(r.CategoryID)
	if err != nil {
		return err
	}
	merchantID, err := id.ParseMerchantID(r.MerchantID)
	if err != nil {
		return err
	}
	r.input = models.NewTransactionInput{
		Date:        date,
		Type:        kind,
		Amount:      *r.Amount,
		Description: r.Description,
		Notes:       r.Notes,
		ReceiptURL:  r.ReceiptURL,
		CategoryID:  categoryID,
		MerchantID:  merchantID,
	}
	return nil
}

// UpdateTransactionRequest is the body of PUT /api/transactions/{id}.
type UpdateTransactionRequest struct {
	Date        *string  `json:"date"`
	Type        *string  `json:"type"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
	ReceiptURL  *string  `json:"receipt_url"`
	CategoryID  *string  `json:"category_id"`
	MerchantID  *string  `json:"merchant_id"`

	patch models.TransactionPatch
}

func (r *UpdateTransactionRequest) Validate() error {
	p := models.TransactionPatch{
		Amount:      r.Amount,
		Description: r.Description,
		Notes:       r.Notes,
		ReceiptURL:  r.ReceiptURL,
	}
	if r.Date != nil {
		date, err := requireDate(*r.Date)
		if err != nil {
			return err
		}
		p.Date = &date
	}
	if r.Type != nil {
		kind, err := models.ParseKind(*r.Type)
		if err != nil {
			return err
		}
		p.Type = &kind
	}
	if r.CategoryID != nil {
		categoryID, err := id.ParseCategoryID(*r.CategoryID)
		if err != nil {
			return err
		}
		p.CategoryID = &categoryID
	}
	if r.MerchantID != nil {
		merchantID, err := id.ParseMerchantID(*r.MerchantID)
		if err != nil {
			return err
		}
		p.MerchantID = &merchantID
	}
	r.patch = p
	return nil
}

// CreateBudgetRequest is the body of POST /api/budgets.
type CreateBudgetRequest struct {
	CategoryID     string   `json:"category_id"`
	Amount         *float64 `json:"amount"`
	Month          *int     `json:"month"`
	Year           *int     `json:"year"`
	AlertThreshold *float64 `json:"alert_threshold"`

	input service.BudgetInput
}

func (r *CreateBudgetRequest) Validate() error {
	categoryID, err := id.ParseCategoryID(r.CategoryID)
	if err != nil {
		return err
	}
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	if r.Month == nil {
		return dErrors.New(dErrors.CodeValidation, "month is required")
	}
	if r.Year == nil {
		return dErrors.New(dErrors.CodeValidation, "year is required")
	}
	r.input = service.BudgetInput{
		CategoryID:     categoryID,
		Amount:         *r.Amount,
		Month:          *r.Month,
		Year:           *r.Year,
		AlertThreshold: r.AlertThreshold,
	}
	return nil
}

// UpdateBudgetRequest is the body of PUT /api/budgets/{id}.
type UpdateBudgetRequest struct {
	Amount         *float64 `json:"amount"`
	AlertThreshold *float64 `json:"alert_threshold"`
}

func (r *UpdateBudgetRequest) Validate() error { return nil }

func (r *UpdateBudgetRequest) toPatch() models.BudgetPatch {
	return models.BudgetPatch{Amount: r.Amount, AlertThreshold: r.AlertThreshold}
}

func requireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	date, err := httputil.ParseDate(s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	return date, nil
}
