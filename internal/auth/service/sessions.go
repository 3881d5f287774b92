package service

import (
	"context"
	"fmt"

	"coinquest/internal/auth/models"
	"coinquest/internal/platform/tracing"
	logmodels "coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/requestcontext"
)

// ListSessions returns the user's unexpired sessions, newest first, marking
// the one the caller is using.
func (s *Service) ListSessions(ctx context.Context, userID id.UserID, current id.SessionID) (*models.SessionsResult, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	now := requestcontext.Now(ctx)
	result := &models.SessionsResult{Sessions: make([]models.SessionSummary, 0, len(sessions))}
	for _, session := range sessions {
		if session.IsExpired(now) {
			continue
		}
		label := session.DeviceLabel
		if label == "" {
			label = "Unknown Device"
		}
		result.Sessions = append(result.Sessions, models.SessionSummary{
			SessionID:    session.ID.String(),
			Device:       label,
			IPAddress:    session.IPAddress,
			CreatedAt:    session.CreatedAt,
			LastActivity: session.LastAccessed,
			ExpiresAt:    session.ExpiresAt,
			IsCurrent:    session.ID == current,
		})
	}
	return result, nil
}

// PurgeExpiredSessions deletes every session past its expiry and returns
// how many were removed.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.Start(ctx, "auth.PurgeExpiredSessions")
	defer func() { tracing.End(span, err) }()

	removed, err := s.sessions.DeleteExpired(ctx, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge sessions")
	}
	if s.metrics != nil {
		s.metrics.AddSessionsPurged(removed)
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired sessions purged", "count", removed)
		s.record(ctx, logmodels.Event{
			Level:   logmodels.LevelInfo,
			Message: "expired sessions purged",
			Details: fmt.Sprintf("removed=%d", removed),
		})
	}
	return removed, nil
}
