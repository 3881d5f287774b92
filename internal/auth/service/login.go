package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"coinquest/internal/auth/device"
	"coinquest/internal/auth/models"
	"coinquest/internal/auth/secrets"
	jwttoken "coinquest/internal/jwt_token"
	"coinquest/internal/platform/tracing"
	logmodels "coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/requestcontext"
)

const (
	msgBadCredentials = "Incorrect username or password"
	msgInactiveUser   = "Inactive user"
)

// Authenticate looks the account up by username or email and checks the
// password. It returns (nil, nil) for an unknown account and for a wrong
// password alike; errors are reserved for store failures.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		secrets.BurnVerify(password)
		return nil, nil
	}
	user, err := s.users.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			secrets.BurnVerify(password)
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !secrets.Verify(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

// Login authenticates the caller, records a new session with the request's
// client metadata and issues an access/refresh token pair bound to it.
func (s *Service) Login(ctx context.Context, identifier, password string) (_ *models.TokenResult, err error) {
	ctx, span := tracing.Start(ctx, "auth.Login")
	defer func() { tracing.End(span, err) }()

	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.observeLogin("failure")
		s.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
		)
		s.record(ctx, logmodels.Event{
			Level:   logmodels.LevelWarning,
			Message: "failed login attempt",
			Details: "login=" + strings.TrimSpace(identifier) + " ip=" + requestcontext.ClientIP(ctx),
		})
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgBadCredentials)
	}
	if !user.IsActive {
		s.observeLogin("inactive")
		return nil, dErrors.New(dErrors.CodeBadRequest, msgInactiveUser)
	}

	now := requestcontext.Now(ctx)
	session, err := models.NewSession(id.SessionID(uuid.New()), uuid.NewString(), user.ID, s.SessionTTL, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build session")
	}
	session.IPAddress = requestcontext.ClientIP(ctx)
	session.UserAgent = requestcontext.UserAgent(ctx)
	session.DeviceLabel = device.ParseUserAgent(session.UserAgent)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	access, err := s.tokens.IssueAccessToken(user.ID, session.ID, s.AccessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, session.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}

	s.observeLogin("success")
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"session_id", session.ID.String(),
		"device", session.DeviceLabel,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.TokenResult{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Refresh mints a new access token from a refresh token whose session is
// still live. The refresh token itself is returned unchanged.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (_ *models.TokenResult, err error) {
	ctx, span := tracing.Start(ctx, "auth.Refresh")
	defer func() { tracing.End(span, err) }()

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	session, err := s.sessions.FindByID(ctx, claims.Session())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.UserID != userID || session.IsExpired(now) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
	}

	user, err := s.loadActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Touch(ctx, session.ID, now); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update session")
	}
	access, err := s.tokens.IssueAccessToken(user.ID, session.ID, s.AccessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	if s.metrics != nil {
		s.metrics.IncrementTokensRefreshed()
	}
	return &models.TokenResult{
		AccessToken:  access.Token,
		RefreshToken: refreshToken,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Logout deletes the caller's session and revokes the presented access
// token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, principal requestcontext.Principal) error {
	if principal.UserID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "Not authenticated")
	}
	if !principal.SessionID.IsNil() {
		if err := s.sessions.Delete(ctx, principal.SessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
		}
	}
	if principal.TokenID != "" {
		ttl := principal.TokenExpiry.Sub(requestcontext.Now(ctx))
		if ttl < time.Second {
			ttl = time.Second
		}
		if err := s.trl.RevokeToken(ctx, principal.TokenID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
	}
	s.logger.InfoContext(ctx, "user logged out",
		"user_id", principal.UserID.String(),
		"session_id", principal.SessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
