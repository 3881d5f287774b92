package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/requestcontext"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Store persists system log entries.
type Store interface {
	Append(ctx context.Context, entry *models.Entry) error
	List(ctx context.Context, skip, limit int) ([]*models.Entry, error)
}

// Fanout receives entries after they are stored. Enqueue must not block.
type Fanout interface {
	Enqueue(entry *models.Entry) bool
}

// Service records operational events and serves them to superusers.
type Service struct {
	store  Store
	fanout Fanout
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFanout forwards every stored entry to f.
func WithFanout(f Fanout) Option {
	return func(s *Service) {
		s.fanout = f
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("system log store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Record stores event stamped with a fresh id and the request time.
func (s *Service) Record(ctx context.Context, event models.Event) error {
	entry, err := models.NewEntry(id.SystemLogID(uuid.New()), event, requestcontext.Now(ctx))
	if err != nil {
		return dErrors.InvariantToValidation(err)
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store system log")
	}
	if s.fanout != nil {
		s.fanout.Enqueue(entry)
	}
	return nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	if skip < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "skip must be non-negative")
	}
	if limit < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be at least 1")
	}
	if limit > MaxLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "Limit cannot exceed 1000")
	}
	entries, err := s.store.List(ctx, skip, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list system logs")
	}
	return entries, nil
}

// ReportPanic records a recovered handler panic as an error entry.
func (s *Service) ReportPanic(ctx context.Context, recovered any) {
	event := models.Event{
		Level:     models.LevelError,
		Component: "http",
		Message:   "unhandled panic while serving request",
		Details:   panicDetails(ctx, recovered),
	}
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		event.UserID = &userID
	}
	if err := s.Record(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record panic", "error", err)
	}
}

func panicDetails(ctx context.Context, recovered any) string {
	details := fmt.Sprintf("%v", recovered)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		details = "request_id=" + requestID + " " + details
	}
	return details
}
