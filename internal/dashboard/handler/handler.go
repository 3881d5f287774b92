package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinquest/internal/dashboard/service"
	ledgerhandler "coinquest/internal/ledger/handler"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

type Service interface {
	Build(ctx context.Context, owner id.UserID, month, year int) (*service.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
}

type MonthlyOverviewResponse struct {
	Income            float64 `json:"income"`
	Expenses          float64 `json:"expenses"`
	Balance           float64 `json:"balance"`
	BudgetUsed        float64 `json:"budget_used"`
	BudgetTotal       float64 `json:"budget_total"`
	TransactionsCount int     `json:"transactions_count"`
}

type CategorySpendingResponse struct {
	CategoryID         id.CategoryID `json:"category_id"`
	CategoryName       string        `json:"category_name"`
	Amount             float64       `json:"amount"`
	BudgetAmount       *float64      `json:"budget_amount"`
	PercentageOfBudget *float64      `json:"percentage_of_budget"`
}

type DashboardResponse struct {
	Month              int                                 `json:"month"`
	Year               int                                 `json:"year"`
	MonthlyOverview    MonthlyOverviewResponse             `json:"monthly_overview"`
	CategorySpending   []CategorySpendingResponse          `json:"category_spending"`
	RecentTransactions []ledgerhandler.TransactionResponse `json:"recent_transactions"`
}

// HandleDashboard handles GET /dashboard?month=&year=. Missing values default
// to the current UTC month.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.UserID(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	now := requestcontext.Now(ctx).UTC()
	month, err := httputil.QueryIntDefault(r, "month", int(now.Month()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	year, err := httputil.QueryIntDefault(r, "year", now.Year())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.Build(ctx, owner, month, year)
	if err != nil {
		h.logger.WarnContext(ctx, "dashboard request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", owner.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

func toResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Month: d.Month,
		Year:  d.Year,
		MonthlyOverview: MonthlyOverviewResponse{
			Income:            d.Overview.Income,
			Expenses:          d.Overview.Expenses,
			Balance:           d.Overview.Balance,
			BudgetUsed:        d.Overview.BudgetUsed,
			BudgetTotal:       d.Overview.BudgetTotal,
			TransactionsCount: d.Overview.TransactionsCount,
		},
		CategorySpending:   make([]CategorySpendingResponse, 0, len(d.CategorySpending)),
		RecentTransactions: make([]ledgerhandler.TransactionResponse, 0, len(d.RecentTransactions)),
	}
	for _, cs := range d.CategorySpending {
		resp.CategorySpending = append(resp.CategorySpending, CategorySpendingResponse{
			CategoryID:         cs.CategoryID,
			CategoryName:       cs.CategoryName,
			Amount:             cs.Amount,
			BudgetAmount:       cs.BudgetAmount,
			PercentageOfBudget: cs.PercentageOfBudget,
		})
	}
	for _, t := range d.RecentTransactions {
		resp.RecentTransactions = append(resp.RecentTransactions, ledgerhandler.ToTransactionResponse(t))
	}
	return resp
}
