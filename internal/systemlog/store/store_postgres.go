package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/tx"
)

// PostgresStore persists system log entries in the system_logs table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.Entry) error {
	var userID *uuid.UUID
	if entry.UserID != nil {
		u := uuid.UUID(*entry.UserID)
		userID = &u
	}
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO system_logs (id, timestamp, level, message, details, component, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(entry.ID), entry.Timestamp, string(entry.Level), entry.Message,
		entry.Details, entry.Component, userID)
	if err != nil {
		return fmt.Errorf("insert system log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *PostgresStore) List(ctx context.Context, skip, limit int) ([]*models.Entry, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, timestamp, level, message, details, component, user_id
		FROM system_logs
		ORDER BY timestamp DESC, id
		OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list system logs: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Entry, 0)
	for rows.Next() {
		var (
			e                  models.Entry
			entryID            uuid.UUID
			level              string
			details, component sql.NullString
			userID             uuid.NullUUID
		)
		if err := rows.Scan(&entryID, &e.Timestamp, &level, &e.Message, &details, &component, &userID); err != nil {
			return nil, fmt.Errorf("scan system log: %w", err)
		}
		e.ID = id.SystemLogID(entryID)
		e.Level = models.Level(level)
		if details.Valid {
			e.Details = &details.String
		}
		if component.Valid {
			e.Component = &component.String
		}
		if userID.Valid {
			u := id.UserID(userID.UUID)
			e.UserID = &u
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
