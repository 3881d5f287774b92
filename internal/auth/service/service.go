package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"coinquest/internal/auth/models"
	jwttoken "coinquest/internal/jwt_token"
	"coinquest/internal/platform/metrics"
	logmodels "coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByLogin(ctx context.Context, identifier string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error
	Delete(ctx context.Context, sessionID id.SessionID) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type TokenService interface {
	IssueAccessToken(subject id.UserID, sessionID id.SessionID, ttl time.Duration) (jwttoken.IssuedToken, error)
	IssueRefreshToken(subject id.UserID, sessionID id.SessionID) (jwttoken.IssuedToken, error)
	VerifyAccessToken(token string) (*jwttoken.Claims, error)
	VerifyRefreshToken(token string) (*jwttoken.Claims, error)
}

// Config holds token and session lifetimes.
type Config struct {
	AccessTTL  time.Duration
	SessionTTL time.Duration
}

// Service implements registration, login, token refresh and session
// lifecycle. Handlers and the auth middleware are its only callers.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenService
	trl      TokenRevocationList

	AccessTTL  time.Duration
	SessionTTL time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	events  EventRecorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventRecorder(recorder EventRecorder) Option {
	return func(s *Service) {
		s.events = recorder
	}
}

func New(users UserStore, sessions SessionStore, tokens TokenService, trl TokenRevocationList, cfg Config, opts ...Option) (*Service, error) {
	if users == nil || sessions == nil || tokens == nil || trl == nil {
		return nil, errors.New("users, sessions, tokens and revocation list are required")
	}
	if cfg.AccessTTL <= 0 || cfg.SessionTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		trl:        trl,
		AccessTTL:  cfg.AccessTTL,
		SessionTTL: cfg.SessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

func (s *Service) record(ctx context.Context, event logmodels.Event) {
	if s.events == nil {
		return
	}
	event.Component = "auth"
	if err := s.events.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record system log", "error", err, "message", event.Message)
	}
}

func (s *Service) observeLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}
