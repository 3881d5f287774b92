package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinquest/internal/systemlog/models"
	"coinquest/internal/systemlog/service"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, skip, limit int) ([]*models.Entry, error)
}

// Handler serves the system log listing. Mount it behind
// admin.RequireSuperuser.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/logs", h.HandleList)
}

// HandleList handles GET /logs?skip=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skip, err := httputil.QueryIntDefault(r, "skip", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := httputil.QueryIntDefault(r, "limit", service.DefaultLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, skip, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list system logs",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
