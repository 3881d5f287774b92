package handler

import (
	"net/http"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// HandleListTransactions handles GET /transactions. Query parameters:
// start_date, end_date, transaction_type, category_ids and merchant_ids
// (comma-separated), min_amount, max_amount, search, skip, limit.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	filter, err := parseTransactionFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListTransactions(r.Context(), owner, filter, page)
	if err != nil {
		h.fail(w, r, "failed to list transactions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapSlice(list, ToTransactionResponse))
}

func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateTransactionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.service.CreateTransaction(ctx, owner, req.input)
	if err != nil {
		h.fail(w, r, "failed to create transaction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToTransactionResponse(d))
}

func (h *Handler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, id.ParseTransactionID)
	if !ok {
		return
	}

	d, err := h.service.GetTransaction(r.Context(), owner, transactionID)
	if err != nil {
		h.fail(w, r, "failed to get transaction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToTransactionResponse(d))
}

func (h *Handler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, id.ParseTransactionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateTransactionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d, err := h.service.UpdateTransaction(ctx, owner, transactionID, req.patch)
	if err != nil {
		h.fail(w, r, "failed to update transaction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToTransactionResponse(d))
}

func (h *Handler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, id.ParseTransactionID)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), owner, transactionID); err != nil {
		h.fail(w, r, "failed to delete transaction", err)
		return
	}
	deleted(w, "Transaction")
}

func parseTransactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var (
		f   models.TransactionFilter
		err error
	)
	if f.StartDate, err = httputil.QueryDate(r, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = httputil.QueryDate(r, "end_date"); err != nil {
		return f, err
	}
	if v := httputil.QueryString(r, "transaction_type"); v != "" {
		kind, err := models.ParseKind(v)
		if err != nil {
			return f, err
		}
		f.Type = &kind
	}
	for _, raw := range httputil.QueryList(r, "category_ids") {
		categoryID, err := id.ParseCategoryID(raw)
		if err != nil {
			return f, err
		}
		f.CategoryIDs = append(f.CategoryIDs, categoryID)
	}
	for _, raw := range httputil.QueryList(r, "merchant_ids") {
		merchantID, err := id.ParseMerchantID(raw)
		if err != nil {
			return f, err
		}
		f.MerchantIDs = append(f.MerchantIDs, merchantID)
	}
	if f.MinAmount, err = httputil.QueryFloat(r, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = httputil.QueryFloat(r, "max_amount"); err != nil {
		return f, err
	}
	f.Search = httputil.QueryString(r, "search")
	return f, nil
}

func parsePage(r *http.Request) (models.Page, error) {
	skip, err := httputil.QueryIntDefault(r, "skip", 0)
	if err != nil {
		return models.Page{}, err
	}
	limit, err := httputil.QueryIntDefault(r, "limit", models.DefaultLimit)
	if err != nil {
		return models.Page{}, err
	}
	return models.NewPage(skip, limit)
}
