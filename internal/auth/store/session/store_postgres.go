package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coinquest/internal/auth/models"
	"coinquest/internal/platform/postgres"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/platform/tx"
)

// PostgresStore persists sessions in the user_sessions table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed session store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const sessionColumns = `id, session_token, user_id, expires_at, created_at, last_accessed, ip_address, user_agent, device_label`

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO user_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(session.ID),
		session.Token,
		uuid.UUID(session.UserID),
		session.ExpiresAt,
		session.CreatedAt,
		session.LastAccessed,
		nullString(session.IPAddress),
		nullString(session.UserAgent),
		nullString(session.DeviceLabel),
	)
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return fmt.Errorf("session token: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE id = $1`, uuid.UUID(sessionID))
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	return session, nil
}

// ListByUser returns the user's sessions, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE user_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE user_sessions SET last_accessed = $2 WHERE id = $1`, uuid.UUID(sessionID), at)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM user_sessions WHERE id = $1`, uuid.UUID(sessionID))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireRow(res)
}

// DeleteExpired removes every session whose expiry is before now.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM user_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		session                      models.Session
		rawID, rawUser               uuid.UUID
		ipAddress, userAgent, device sql.NullString
	)
	if err := row.Scan(&rawID, &session.Token, &rawUser, &session.ExpiresAt, &session.CreatedAt,
		&session.LastAccessed, &ipAddress, &userAgent, &device); err != nil {
		return nil, err
	}
	session.ID = id.SessionID(rawID)
	session.UserID = id.UserID(rawUser)
	session.IPAddress = ipAddress.String
	session.UserAgent = userAgent.String
	session.DeviceLabel = device.String
	return &session, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
