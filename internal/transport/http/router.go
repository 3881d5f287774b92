package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "coinquest/internal/auth/handler"
	dashboardhandler "coinquest/internal/dashboard/handler"
	ledgerhandler "coinquest/internal/ledger/handler"
	"coinquest/internal/platform/metrics"
	ratelimit "coinquest/internal/ratelimit/middleware"
	logshandler "coinquest/internal/systemlog/handler"
	"coinquest/pkg/platform/middleware/accesslog"
	"coinquest/pkg/platform/middleware/admin"
	"coinquest/pkg/platform/middleware/auth"
	"coinquest/pkg/platform/middleware/cors"
	"coinquest/pkg/platform/middleware/metadata"
	"coinquest/pkg/platform/middleware/requestid"
	"coinquest/pkg/platform/middleware/requesttime"
)

// Dependencies are the handlers and cross-cutting collaborators the router
// composes. Metrics, Gatherer, OnPanic, Health and AuthLimit may be nil.
type Dependencies struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	OnPanic     accesslog.PanicReporter
	CORSOrigins []string
	Version     string
	Health      Pinger
	AuthLimit   *ratelimit.Middleware
	// Proxies whose forwarding headers name the client. Empty trusts none.
	TrustedProxies metadata.TrustedProxies

	Resolver   auth.PrincipalResolver
	Auth       *authhandler.Handler
	Ledger     *ledgerhandler.Handler
	Dashboard  *dashboardhandler.Handler
	SystemLogs *logshandler.Handler
}

// NewRouter mounts /health and /metrics at the root and the JSON API under /api.
func NewRouter(deps Dependencies) http.Handler {
	var observer accesslog.Observer
	if deps.Metrics != nil {
		observer = deps.Metrics
	}

	r := chi.NewRouter()
	r.Use(cors.Middleware(deps.CORSOrigins))
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.Middleware(deps.TrustedProxies))
	r.Use(accesslog.Middleware(deps.Logger, observer, deps.OnPanic))

	r.Get("/health", healthHandler(deps.Health, deps.Version, deps.Logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthLimit.Limit("auth"))
			deps.Auth.RegisterPublic(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Resolver, deps.Logger))
			deps.Auth.RegisterAuthenticated(r)
			deps.Ledger.Register(r)
			deps.Dashboard.Register(r)

			r.Group(func(r chi.Router) {
				r.Use(admin.RequireSuperuser(deps.Logger))
				deps.Auth.RegisterAdmin(r)
				deps.SystemLogs.Register(r)
			})
		})
	})
	return r
}
