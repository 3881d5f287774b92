package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"coinquest/internal/auth/models"
	"coinquest/internal/auth/secrets"
	"coinquest/internal/platform/tracing"
	logmodels "coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/requestcontext"
)

// Register creates an active, non-superuser account. Email and username
// are checked separately so the caller learns which one is taken.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (_ *models.User, err error) {
	ctx, span := tracing.Start(ctx, "auth.Register")
	defer func() { tracing.End(span, err) }()

	if len(req.Password) < models.MinPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", models.MinPasswordLength))
	}

	if err := s.ensureAvailable(ctx, req.Email, req.Username); err != nil {
		return nil, err
	}

	hashed, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := models.NewUser(id.UserID(uuid.New()), req.Email, req.Username, hashed, req.FullName, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantToValidation(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "Email or username already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.record(ctx, logmodels.Event{
		Level:   logmodels.LevelInfo,
		Message: "user registered",
		Details: "username=" + user.Username,
		UserID:  &user.ID,
	})
	return user, nil
}

func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return dErrors.New(dErrors.CodeConflict, "Email already registered")
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up email")
	}

	_, err = s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return dErrors.New(dErrors.CodeConflict, "Username already taken")
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up username")
	}
	return nil
}
