package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinquest/internal/auth/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// Service is the identity surface the handler needs.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.TokenResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResult, error)
	Logout(ctx context.Context, principal requestcontext.Principal) error
	Me(ctx context.Context, userID id.UserID) (*models.User, error)
	ListSessions(ctx context.Context, userID id.UserID, current id.SessionID) (*models.SessionsResult, error)
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// Handler serves /api/auth and the session maintenance endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
}

// RegisterAuthenticated mounts endpoints that expect a resolved principal.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/sessions", h.HandleListSessions)
}

// RegisterAdmin mounts superuser-only endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/sessions/purge", h.HandlePurgeSessions)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req.toModel())
	if err != nil {
		h.logFailure(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RefreshRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logFailure(ctx, "token refresh failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(ctx, principal.UserID)
	if err != nil {
		h.logFailure(ctx, "failed to load current user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(ctx, principal); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.service.ListSessions(ctx, principal.UserID, principal.SessionID)
	if err != nil {
		h.logFailure(ctx, "failed to list sessions", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandlePurgeSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	purged, err := h.service.PurgeExpiredSessions(ctx)
	if err != nil {
		h.logFailure(ctx, "session purge failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "sessions purged on request",
		"purged", purged,
		"user_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, PurgeResponse{Purged: purged})
}

func (h *Handler) requirePrincipal(w http.ResponseWriter, r *http.Request) (requestcontext.Principal, bool) {
	principal, ok := requestcontext.PrincipalFrom(r.Context())
	if !ok || principal.UserID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return requestcontext.Principal{}, false
	}
	return principal, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
