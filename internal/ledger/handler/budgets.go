package handler

import (
	"net/http"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// HandleListBudgets handles GET /budgets?month=&year=.
func (h *Handler) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var (
		filter models.BudgetFilter
		err    error
	)
	if filter.Month, err = httputil.QueryInt(r, "month"); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if filter.Year, err = httputil.QueryInt(r, "year"); err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListBudgets(r.Context(), owner, filter)
	if err != nil {
		h.fail(w, r, "failed to list budgets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapSlice(list, ToBudgetResponse))
}

func (h *Handler) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateBudgetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.service.CreateBudget(ctx, owner, req.input)
	if err != nil {
		h.fail(w, r, "failed to create budget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToBudgetResponse(d))
}

func (h *Handler) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, id.ParseBudgetID)
	if !ok {
		return
	}

	d, err := h.service.GetBudget(r.Context(), owner, budgetID)
	if err != nil {
		h.fail(w, r, "failed to get budget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToBudgetResponse(d))
}

func (h *Handler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, id.ParseBudgetID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateBudgetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.service.UpdateBudget(ctx, owner, budgetID, req.toPatch())
	if err != nil {
		h.fail(w, r, "failed to update budget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToBudgetResponse(d))
}

func (h *Handler) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, id.ParseBudgetID)
	if !ok {
		return
	}

	if err := h.service.DeleteBudget(r.Context(), owner, budgetID); err != nil {
		h.fail(w, r, "failed to delete budget", err)
		return
	}
	deleted(w, "Budget")
}
