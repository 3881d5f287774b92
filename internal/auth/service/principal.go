package service

import (
	"context"
	"errors"

	"coinquest/internal/auth/models"
	jwttoken "coinquest/internal/jwt_token"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/sentinel"
	"coinquest/pkg/requestcontext"
)

// ResolvePrincipal validates an access token and loads its owner. Revoked
// tokens, tokens whose session is gone, and unknown users are unauthorized;
// inactive users are a bad request.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (requestcontext.Principal, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return requestcontext.Principal{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return requestcontext.Principal{}, err
	}

	if claims.ID != "" {
		revoked, err := s.trl.IsRevoked(ctx, claims.ID)
		if err != nil {
			return requestcontext.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
		}
		if revoked {
			return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
		}
	}

	sessionID := claims.Session()
	if !sessionID.IsNil() {
		session, err := s.sessions.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
			}
			return requestcontext.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
		}
		if session.UserID != userID || session.IsExpired(requestcontext.Now(ctx)) {
			return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
		}
	}

	user, err := s.loadActiveUser(ctx, userID)
	if err != nil {
		return requestcontext.Principal{}, err
	}

	principal := requestcontext.Principal{
		UserID:    user.ID,
		SessionID: sessionID,
		TokenID:   claims.ID,
		Superuser: user.IsSuperuser,
	}
	if claims.ExpiresAt != nil {
		principal.TokenExpiry = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.loadActiveUser(ctx, userID)
}

func (s *Service) loadActiveUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, jwttoken.CredentialsError)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeBadRequest, msgInactiveUser)
	}
	return user, nil
}
