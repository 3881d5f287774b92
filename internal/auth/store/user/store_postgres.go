package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"coinquest/internal/auth/models"
	"coinquest/internal/platform/postgres"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, username, hashed_password, full_name, is_active, is_superuser, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(user.ID),
		models.NormalizeEmail(user.Email),
		user.Username,
		user.HashedPassword,
		user.FullName,
		user.IsActive,
		user.IsSuperuser,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := postgres.IsUniqueViolation(err); ok {
			return fmt.Errorf("%s: %w", constraint, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row, "find user by id")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, models.NormalizeEmail(email))
	return scanUser(row, "find user by email")
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, strings.TrimSpace(username))
	return scanUser(row, "find user by username")
}

// FindByLogin matches identifier against the username first, then the email.
func (s *PostgresStore) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = $1 OR LOWER(email) = $2
		ORDER BY (username = $1) DESC
		LIMIT 1`,
		strings.TrimSpace(identifier), models.NormalizeEmail(identifier))
	return scanUser(row, "find user by login")
}

func (s *PostgresStore) SetSuperuser(ctx context.Context, username string, superuser bool) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET is_superuser = $2, updated_at = $3 WHERE username = $1`,
		username, superuser, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set superuser: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetActive(ctx context.Context, userID id.UserID, active bool) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(userID), active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res)
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

func scanUser(row *sql.Row, op string) (*models.User, error) {
	var (
		user      models.User
		rawID     uuid.UUID
		fullName  sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&rawID, &user.Email, &user.Username, &user.HashedPassword, &fullName,
		&user.IsActive, &user.IsSuperuser, &user.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id.UserID(rawID)
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		user.UpdatedAt = &t
	}
	return &user, nil
}
