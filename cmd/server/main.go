package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authhandler "coinquest/internal/auth/handler"
	authservice "coinquest/internal/auth/service"
	dashboardhandler "coinquest/internal/dashboard/handler"
	dashboardmetrics "coinquest/internal/dashboard/metrics"
	dashboardservice "coinquest/internal/dashboard/service"
	jwttoken "coinquest/internal/jwt_token"
	ledgerhandler "coinquest/internal/ledger/handler"
	ledgermetrics "coinquest/internal/ledger/metrics"
	ledgerservice "coinquest/internal/ledger/service"
	"coinquest/internal/platform/config"
	"coinquest/internal/platform/httpserver"
	"coinquest/internal/platform/logger"
	"coinquest/internal/platform/metrics"
	ratelimit "coinquest/internal/ratelimit/middleware"
	logshandler "coinquest/internal/systemlog/handler"
	logsservice "coinquest/internal/systemlog/service"
	httptransport "coinquest/internal/transport/http"
	"coinquest/pkg/platform/middleware/cors"
	"coinquest/pkg/platform/middleware/metadata"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer b.Close()

	logOpts := []logsservice.Option{logsservice.WithLogger(log)}
	if b.logWorker != nil {
		logOpts = append(logOpts, logsservice.WithFanout(b.logWorker))
	}
	logs, err := logsservice.New(b.logs, logOpts...)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.RefreshTTL)
	authSvc, err := authservice.New(b.users, b.sessions, tokens, b.trl,
		authservice.Config{AccessTTL: cfg.Auth.AccessTTL, SessionTTL: cfg.Auth.RefreshTTL},
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
		authservice.WithEventRecorder(logs),
	)
	if err != nil {
		return err
	}

	ledgerSvc, err := ledgerservice.New(b.ledger,
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(ledgermetrics.New(reg)),
		ledgerservice.WithTxRunner(b.txRunner),
	)
	if err != nil {
		return err
	}
	dashSvc, err := dashboardservice.New(b.ledger,
		dashboardservice.WithLogger(log),
		dashboardservice.WithMetrics(dashboardmetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	deps := httptransport.Dependencies{
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		OnPanic:        logs.ReportPanic,
		CORSOrigins:    cors.ParseOrigins(cfg.CORSOrigins),
		Version:        cfg.Version,
		AuthLimit:      ratelimit.New(b.rates, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow, log),
		TrustedProxies: proxies,
		Resolver:       authSvc,
		Auth:           authhandler.New(authSvc, log),
		Ledger:         ledgerhandler.New(ledgerSvc, log),
		Dashboard:      dashboardhandler.New(dashSvc, log),
		SystemLogs:     logshandler.New(logs, log),
	}
	if b.db != nil {
		deps.Health = b.db
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	if b.logWorker != nil {
		g.Go(func() error {
			if err := b.logWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if cfg.SessionPurge > 0 {
		g.Go(func() error {
			purgeSessions(gctx, authSvc, cfg.SessionPurge, log)
			return nil
		})
	}
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr, "app", cfg.AppName, "version", cfg.Version, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
