package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide HTTP and identity collectors.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec
	SessionsPurged  prometheus.Counter
	TokensRefreshed prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coinquest_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinquest_users_registered_total",
			Help: "Total number of users registered",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinquest_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		SessionsPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinquest_sessions_purged_total",
			Help: "Expired sessions removed by purge runs",
		}),
		TokensRefreshed: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinquest_tokens_refreshed_total",
			Help: "Access tokens minted from refresh tokens",
		}),
	}
}

// ObserveHTTPRequest records one request latency sample.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncrementUsersRegistered increments the users registered counter by 1
func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

// IncrementLogin counts a login attempt; outcome is "success" or "failure".
func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddSessionsPurged(n int) {
	m.SessionsPurged.Add(float64(n))
}

func (m *Metrics) IncrementTokensRefreshed() {
	m.TokensRefreshed.Inc()
}
