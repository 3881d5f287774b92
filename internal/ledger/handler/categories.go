package handler

import (
	"net/http"

	"coinquest/internal/ledger/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// HandleListCategories handles GET /categories?category_type=income|expense.
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var kind *models.Kind
	if v := httputil.QueryString(r, "category_type"); v != "" {
		k, err := models.ParseKind(v)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		kind = &k
	}

	list, err := h.service.ListCategories(r.Context(), owner, kind)
	if err != nil {
		h.fail(w, r, "failed to list categories", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapSlice(list, ToCategoryResponse))
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateCategoryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	c, err := h.service.CreateCategory(ctx, owner, req.toInput())
	if err != nil {
		h.fail(w, r, "failed to create category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToCategoryResponse(c))
}

func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, id.ParseCategoryID)
	if !ok {
		return
	}

	c, err := h.service.GetCategory(r.Context(), owner, categoryID)
	if err != nil {
		h.fail(w, r, "failed to get category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToCategoryResponse(c))
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, id.ParseCategoryID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateCategoryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	c, err := h.service.UpdateCategory(ctx, owner, categoryID, req.toPatch())
	if err != nil {
		h.fail(w, r, "failed to update category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToCategoryResponse(c))
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, id.ParseCategoryID)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), owner, categoryID); err != nil {
		h.fail(w, r, "failed to delete category", err)
		return
	}
	deleted(w, "Category")
}
