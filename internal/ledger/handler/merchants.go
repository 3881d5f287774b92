package handler

import (
	"net/http"

	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

func (h *Handler) HandleListMerchants(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListMerchants(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "failed to list merchants", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mapSlice(list, ToMerchantResponse))
}

func (h *Handler) HandleCreateMerchant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MerchantRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	m, err := h.service.CreateMerchant(ctx, owner, req.toPatch())
	if err != nil {
		h.fail(w, r, "failed to create merchant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToMerchantResponse(m))
}

func (h *Handler) HandleGetMerchant(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	merchantID, ok := pathID(w, r, id.ParseMerchantID)
	if !ok {
		return
	}

	m, err := h.service.GetMerchant(r.Context(), owner, merchantID)
	if err != nil {
		h.fail(w, r, "failed to get merchant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToMerchantResponse(m))
}

func (h *Handler) HandleUpdateMerchant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	merchantID, ok := pathID(w, r, id.ParseMerchantID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MerchantRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	m, err := h.service.UpdateMerchant(ctx, owner, merchantID, req.toPatch())
	if err != nil {
		h.fail(w, r, "failed to update merchant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToMerchantResponse(m))
}

func (h *Handler) HandleDeleteMerchant(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	merchantID, ok := pathID(w, r, id.ParseMerchantID)
	if !ok {
		return
	}

	if err := h.service.DeleteMerchant(r.Context(), owner, merchantID); err != nil {
		h.fail(w, r, "failed to delete merchant", err)
		return
	}
	deleted(w, "Merchant")
}
