package admin

import (
	"log/slog"
	"net/http"

	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// RequireSuperuser admits only principals carrying the superuser flag. It
// must run after auth.RequireAuth.
func RequireSuperuser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := requestcontext.PrincipalFrom(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
				return
			}
			if !principal.Superuser {
				logger.WarnContext(ctx, "superuser route denied",
					"user_id", principal.UserID,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Not enough permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
