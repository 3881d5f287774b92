package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	authservice "coinquest/internal/auth/service"
	"coinquest/internal/auth/store/revocation"
	sessionStore "coinquest/internal/auth/store/session"
	userStore "coinquest/internal/auth/store/user"
	dashboardservice "coinquest/internal/dashboard/service"
	ledgerservice "coinquest/internal/ledger/service"
	ledgerstore "coinquest/internal/ledger/store"
	"coinquest/internal/platform/config"
	"coinquest/internal/platform/kafka"
	"coinquest/internal/platform/postgres"
	"coinquest/internal/platform/redis"
	ratelimit "coinquest/internal/ratelimit/middleware"
	ratestore "coinquest/internal/ratelimit/store"
	logsmetrics "coinquest/internal/systemlog/metrics"
	"coinquest/internal/systemlog/publisher"
	logsservice "coinquest/internal/systemlog/service"
	logsstore "coinquest/internal/systemlog/store"
	"coinquest/internal/systemlog/worker"
	"coinquest/pkg/platform/tx"
)

// backends holds the storage and messaging collaborators chosen from config:
// Postgres when DATABASE_URL is set, Redis for the revocation list and rate
// limit counters when REDIS_URL is set, Kafka fan-out when brokers are listed. Anything unset
// falls back to an in-memory implementation.
type backends struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client

	users     authservice.UserStore
	sessions  authservice.SessionStore
	trl       authservice.TokenRevocationList
	rates     ratelimit.Store
	ledger    ledgerBackend
	txRunner  ledgerservice.TxRunner
	logs      logsservice.Store
	logWorker *worker.Worker
}

// ledgerBackend is the ledger store as consumed by both the ledger and the
// dashboard services.
type ledgerBackend interface {
	ledgerservice.Store
	dashboardservice.Reader
}

func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*backends, error) {
	b := &backends{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		b.db = db
		b.users = userStore.NewPostgres(db)
		b.sessions = sessionStore.NewPostgres(db)
		b.ledger = ledgerstore.NewPostgres(db)
		b.txRunner = tx.NewRunner(db)
		b.logs = logsstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		b.users = userStore.New()
		b.sessions = sessionStore.New()
		b.ledger = ledgerstore.NewInMemory()
		b.txRunner = tx.NoopRunner{}
		b.logs = logsstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		b.Close()
		return nil, err
	}
	if rc != nil {
		b.redis = rc
		b.trl = revocation.NewRedisTRL(rc.Client)
		b.rates = ratestore.NewRedis(rc.Client)
		log.Info("using redis token revocation list and rate limits")
	} else {
		b.trl = revocation.NewInMemoryTRL()
		b.rates = ratestore.NewInMemory()
	}

	kc, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		b.Close()
		return nil, err
	}
	if kc != nil {
		b.kafka = kc
		pub := publisher.NewKafka(kc, cfg.Kafka.SystemLogTopic)
		b.logWorker = worker.New(pub, worker.DefaultBuffer, log, logsmetrics.New(reg))
		log.Info("publishing system logs to kafka", "topic", cfg.Kafka.SystemLogTopic)
	}
	return b, nil
}

// Close releases every opened connection.
func (b *backends) Close() {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
