package worker

import (
	"context"
	"log/slog"

	"coinquest/internal/systemlog/metrics"
	"coinquest/internal/systemlog/models"
	"coinquest/pkg/platform/circuit"
)

// DefaultBuffer is the queue depth used when New is given a non-positive size.
const DefaultBuffer = 256

// Publisher forwards a persisted entry to the event stream.
type Publisher interface {
	Publish(ctx context.Context, entry *models.Entry) error
}

// Worker drains queued system log entries to a publisher. Enqueue never
// blocks request handling; a full queue drops the entry.
type Worker struct {
	publisher Publisher
	inbox     chan *models.Entry
	logger    *slog.Logger
	metrics   *metrics.Metrics
	breaker   *circuit.Breaker
}

func New(publisher Publisher, buffer int, logger *slog.Logger, m *metrics.Metrics) *Worker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		publisher: publisher,
		inbox:     make(chan *models.Entry, buffer),
		logger:    logger,
		metrics:   m,
		breaker:   circuit.New("systemlog-publisher"),
	}
}

// Enqueue reports whether entry was accepted.
func (w *Worker) Enqueue(entry *models.Entry) bool {
	select {
	case w.inbox <- entry:
		return true
	default:
		w.metrics.Observe(metrics.OutcomeDropped)
		w.logger.Warn("system log queue full, dropping entry", "log_id", entry.ID)
		return false
	}
}

// Run publishes entries until ctx is cancelled, then drains what is
// already queued with a detached context.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case entry := <-w.inbox:
			w.publish(ctx, entry)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case entry := <-w.inbox:
			w.publish(ctx, entry)
		default:
			return
		}
	}
}

// publish logs each failure until the breaker opens, then only the
// transitions, so an unreachable broker does not flood the log.
func (w *Worker) publish(ctx context.Context, entry *models.Entry) {
	if err := w.publisher.Publish(ctx, entry); err != nil {
		w.metrics.Observe(metrics.OutcomeFailed)
		wasOpen := w.breaker.IsOpen()
		_, change := w.breaker.RecordFailure()
		switch {
		case change.Opened:
			w.logger.ErrorContext(ctx, "system log publishing degraded", "breaker", w.breaker.Name(), "error", err)
		case !wasOpen:
			w.logger.ErrorContext(ctx, "failed to publish system log", "log_id", entry.ID, "error", err)
		}
		return
	}
	w.metrics.Observe(metrics.OutcomePublished)
	if _, change := w.breaker.RecordSuccess(); change.Closed {
		w.logger.InfoContext(ctx, "system log publishing recovered", "breaker", w.breaker.Name())
	}
}

// Degraded reports whether recent publishes have been failing.
func (w *Worker) Degraded() bool {
	return w.breaker.IsOpen()
}
