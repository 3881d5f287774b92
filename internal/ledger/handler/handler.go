package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinquest/internal/ledger/models"
	"coinquest/internal/ledger/service"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// Service is the ledger surface the handler needs.
type Service interface {
	CreateCategory(ctx context.Context, owner id.UserID, in service.CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) (*models.Category, error)
	ListCategories(ctx context.Context, owner id.UserID, kind *models.Kind) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, owner id.UserID, categoryID id.CategoryID) error

	CreateMerchant(ctx context.Context, owner id.UserID, fields models.MerchantPatch) (*models.Merchant, error)
	GetMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) (*models.Merchant, error)
	ListMerchants(ctx context.Context, owner id.UserID) ([]*models.Merchant, error)
	UpdateMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID, patch models.MerchantPatch) (*models.Merchant, error)
	DeleteMerchant(ctx context.Context, owner id.UserID, merchantID id.MerchantID) error

	CreateTransaction(ctx context.Context, owner id.UserID, in models.NewTransactionInput) (*models.TransactionDetails, error)
	GetTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) (*models.TransactionDetails, error)
	ListTransactions(ctx context.Context, owner id.UserID, filter models.TransactionFilter, page models.Page) ([]*models.TransactionDetails, error)
	UpdateTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID, patch models.TransactionPatch) (*models.TransactionDetails, error)
	DeleteTransaction(ctx context.Context, owner id.UserID, transactionID id.TransactionID) error

	CreateBudget(ctx context.Context, owner id.UserID, in service.BudgetInput) (*models.BudgetDetails, error)
	GetBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) (*models.BudgetDetails, error)
	ListBudgets(ctx context.Context, owner id.UserID, filter models.BudgetFilter) ([]*models.BudgetDetails, error)
	UpdateBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID, patch models.BudgetPatch) (*models.BudgetDetails, error)
	DeleteBudget(ctx context.Context, owner id.UserID, budgetID id.BudgetID) error
}

// Handler serves the owner-scoped CRUD endpoints. Every route expects the
// auth middleware to have resolved a principal.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts categories, merchants, transactions and budgets.
func (h *Handler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.HandleListCategories)
		r.Post("/", h.HandleCreateCategory)
		r.Get("/{id}", h.HandleGetCategory)
		r.Put("/{id}", h.HandleUpdateCategory)
		r.Delete("/{id}", h.HandleDeleteCategory)
	})
	r.Route("/merchants", func(r chi.Router) {
		r.Get("/", h.HandleListMerchants)
		r.Post("/", h.HandleCreateMerchant)
		r.Get("/{id}", h.HandleGetMerchant)
		r.Put("/{id}", h.HandleUpdateMerchant)
		r.Delete("/{id}", h.HandleDeleteMerchant)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.HandleListTransactions)
		r.Post("/", h.HandleCreateTransaction)
		r.Get("/{id}", h.HandleGetTransaction)
		r.Put("/{id}", h.HandleUpdateTransaction)
		r.Delete("/{id}", h.HandleDeleteTransaction)
	})
	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", h.HandleListBudgets)
		r.Post("/", h.HandleCreateBudget)
		r.Get("/{id}", h.HandleGetBudget)
		r.Put("/{id}", h.HandleUpdateBudget)
		r.Delete("/{id}", h.HandleDeleteBudget)
	})
}

// owner returns the authenticated caller, writing 401 when there is none.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return id.UserID{}, false
	}
	return userID, true
}

// pathID parses the {id} URL parameter with parse, writing 422 on failure.
func pathID[T any](w http.ResponseWriter, r *http.Request, parse func(string) (T, error)) (T, bool) {
	v, err := parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		var zero T
		return zero, false
	}
	return v, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx).String(),
	}
	if de, ok := dErrors.From(err); !ok || httputil.StatusFor(de.Code) == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func deleted(w http.ResponseWriter, entity string) {
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: entity + " deleted successfully"})
}
