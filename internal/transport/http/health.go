package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func healthHandler(db Pinger, version string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := HealthResponse{
			Status:    "healthy",
			Timestamp: requestcontext.Now(ctx).UTC(),
			Version:   version,
		}
		if db != nil {
			pingCtx, cancel := context.WithTimeout(ctx, healthTimeout)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				logger.ErrorContext(ctx, "health check failed", "error", err)
				resp.Status = "unhealthy"
				httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
