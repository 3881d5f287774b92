package httptransport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authhandler "coinquest/internal/auth/handler"
	authmodels "coinquest/internal/auth/models"
	authservice "coinquest/internal/auth/service"
	"coinquest/internal/auth/store/revocation"
	sessionStore "coinquest/internal/auth/store/session"
	userStore "coinquest/internal/auth/store/user"
	dashboardhandler "coinquest/internal/dashboard/handler"
	dashboardservice "coinquest/internal/dashboard/service"
	jwttoken "coinquest/internal/jwt_token"
	ledgerhandler "coinquest/internal/ledger/handler"
	ledgerservice "coinquest/internal/ledger/service"
	ledgerstore "coinquest/internal/ledger/store"
	"coinquest/internal/platform/logger"
	"coinquest/internal/platform/metrics"
	ratelimit "coinquest/internal/ratelimit/middleware"
	ratestore "coinquest/internal/ratelimit/store"
	logshandler "coinquest/internal/systemlog/handler"
	logsservice "coinquest/internal/systemlog/service"
	logsstore "coinquest/internal/systemlog/store"
	"coinquest/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	deps   Dependencies
	users  *userStore.InMemoryUserStore
	logs   *logsservice.Service
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := logger.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	logs, err := logsservice.New(logsstore.NewInMemory(), logsservice.WithLogger(log))
	s.Require().NoError(err)
	s.logs = logs

	s.users = userStore.New()
	authSvc, err := authservice.New(s.users, sessionStore.New(),
		jwttoken.NewJWTService("router-test-signing-key-0123456789", "coinquest", 7*24*time.Hour),
		revocation.NewInMemoryTRL(),
		authservice.Config{AccessTTL: 30 * time.Minute, SessionTTL: 7 * 24 * time.Hour},
		authservice.WithLogger(log),
		authservice.WithEventRecorder(logs),
	)
	s.Require().NoError(err)

	ledger := ledgerstore.NewInMemory()
	ledgerSvc, err := ledgerservice.New(ledger, ledgerservice.WithLogger(log))
	s.Require().NoError(err)
	dashSvc, err := dashboardservice.New(ledger, dashboardservice.WithLogger(log))
	s.Require().NoError(err)

	s.deps = Dependencies{
		Logger:      log,
		Metrics:     m,
		Gatherer:    reg,
		OnPanic:     logs.ReportPanic,
		CORSOrigins: []string{"http://localhost:3000"},
		Version:     "test",
		Resolver:    authSvc,
		Auth:        authhandler.New(authSvc, log),
		Ledger:      ledgerhandler.New(ledgerSvc, log),
		Dashboard:   dashboardhandler.New(dashSvc, log),
		SystemLogs:  logshandler.New(logs, log),
	}
	s.router = NewRouter(s.deps)
}

func (s *RouterSuite) login(username string) string {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/register", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": "correct-horse",
	}))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]any{
		"username_or_email": username,
		"password":          "correct-horse",
	}))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[authmodels.TokenResult](s.T(), rr).AccessToken
}

func (s *RouterSuite) do(method, path, token string, body any) *testResponse {
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(s.T(), method, path, body)
	} else {
		req = testutil.NewRequest(s.T(), method, path)
	}
	if token != "" {
		req = testutil.WithBearer(req, token)
	}
	rr := testutil.DoRequest(s.router, req)
	return &testResponse{code: rr.Code, body: testutil.UnmarshalResponse[map[string]any](s.T(), rr)}
}

type testResponse struct {
	code int
	body *map[string]any
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("healthy", (*body)["status"])
	s.Equal("test", (*body)["version"])
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
	s.Contains(rr.Body.String(), "coinquest_http_request_duration_seconds")
}

func (s *RouterSuite) TestPublicAuthRoutesRateLimited() {
	deps := s.deps
	deps.AuthLimit = ratelimit.New(ratestore.NewInMemory(), 2, time.Minute, logger.Discard())
	router := NewRouter(deps)

	hop := 0
	attempt := func() int {
		hop++
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", map[string]any{
			"username_or_email": "nobody",
			"password":          "wrong-password",
		})
		// Untrusted peers cannot pick their own rate limit key.
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", hop))
		return testutil.DoRequest(router, req).Code
	}
	s.NotEqual(http.StatusTooManyRequests, attempt())
	s.NotEqual(http.StatusTooManyRequests, attempt())
	s.Equal(http.StatusTooManyRequests, attempt())

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *RouterSuite) TestProtectedRoutesRequireToken() {
	for _, path := range []string{"/api/categories", "/api/transactions", "/api/budgets", "/api/dashboard", "/api/logs", "/api/auth/me"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatusAndDetail(s.T(), rr, http.StatusUnauthorized, "Not authenticated")
		s.Equal("Bearer", rr.Header().Get("WWW-Authenticate"), path)
	}
}

func (s *RouterSuite) TestLedgerFlowFeedsDashboard() {
	token := s.login("ada")

	category := s.do(http.MethodPost, "/api/categories", token, map[string]any{"name": "Groceries", "type": "expense"})
	s.Require().Equal(http.StatusCreated, category.code)
	categoryID := (*category.body)["id"]

	merchant := s.do(http.MethodPost, "/api/merchants", token, map[string]any{"name": "Corner Shop"})
	s.Require().Equal(http.StatusCreated, merchant.code)
	merchantID := (*merchant.body)["id"]

	budget := s.do(http.MethodPost, "/api/budgets", token, map[string]any{
		"category_id": categoryID, "amount": 300, "month": 6, "year": 2024,
	})
	s.Require().Equal(http.StatusCreated, budget.code)

	for _, tx := range []map[string]any{
		{"date": "2024-06-03", "type": "income", "amount": 500, "category_id": categoryID, "merchant_id": merchantID},
		{"date": "2024-06-04", "type": "expense", "amount": 200, "category_id": categoryID, "merchant_id": merchantID},
	} {
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/transactions", token, tx).code)
	}

	dash := s.do(http.MethodGet, "/api/dashboard?month=6&year=2024", token, nil)
	s.Require().Equal(http.StatusOK, dash.code)
	overview := (*dash.body)["monthly_overview"].(map[string]any)
	s.InDelta(500, overview["income"], 0.001)
	s.InDelta(200, overview["expenses"], 0.001)
	s.InDelta(300, overview["balance"], 0.001)
	s.InDelta(200, overview["budget_used"], 0.001)
	s.InDelta(300, overview["budget_total"], 0.001)
	s.InDelta(2, overview["transactions_count"], 0)

	other := s.login("grace")
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/categories/"+categoryID.(string), other, nil).code)
}

func (s *RouterSuite) TestSystemLogsAreSuperuserOnly() {
	token := s.login("linus")
	rr := testutil.DoRequest(s.router, testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/api/logs"), token))
	testutil.AssertStatusAndDetail(s.T(), rr, http.StatusForbidden, "Not enough permissions")

	s.Require().NoError(s.users.SetSuperuser(context.Background(), "linus", true))
	rr = testutil.DoRequest(s.router, testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/api/logs"), token))
	testutil.AssertStatusOK(s.T(), rr)
	entries := testutil.UnmarshalResponse[[]map[string]any](s.T(), rr)
	s.NotEmpty(*entries)
}

func TestHealthReportsUnreachableDatabase(t *testing.T) {
	h := healthHandler(failingPinger{}, "1.0.0", logger.Discard())
	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/health"))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, "unhealthy", (*body)["status"])
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error {
	return errors.New("connection refused")
}
