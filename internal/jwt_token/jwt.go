package jwttoken

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// TokenUse distinguishes access tokens from refresh tokens signed with the same key.
type TokenUse string

const (
	UseAccess  TokenUse = "access"
	UseRefresh TokenUse = "refresh"
)

// CredentialsError is the single message used for every token rejection so
// callers cannot tell a forged token from an expired one.
const CredentialsError = "Could not validate credentials"

// Claims are the JWT claims carried by both token kinds. Subject holds the user ID.
type Claims struct {
	Use       TokenUse `json:"typ"`
	SessionID string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus the values callers persist or echo.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccessToken signs a short-lived token for subject bound to sessionID.
func (s *JWTService) IssueAccessToken(subject id.UserID, sessionID id.SessionID, ttl time.Duration) (IssuedToken, error) {
	return s.issue(UseAccess, subject, sessionID, ttl)
}

// IssueRefreshToken signs a long-lived token used only to mint access tokens.
func (s *JWTService) IssueRefreshToken(subject id.UserID, sessionID id.SessionID) (IssuedToken, error) {
	return s.issue(UseRefresh, subject, sessionID, s.refreshTTL)
}

func (s *JWTService) issue(use TokenUse, subject id.UserID, sessionID id.SessionID, ttl time.Duration) (IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()
	claims := Claims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	}
	if !sessionID.IsNil() {
		claims.SessionID = sessionID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return IssuedToken{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return IssuedToken{Token: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken validates signature, expiry, issuer and subject of an access token.
func (s *JWTService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, UseAccess)
}

// VerifyRefreshToken is VerifyAccessToken for refresh tokens.
func (s *JWTService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, UseRefresh)
}

func (s *JWTService) verify(tokenString string, want TokenUse) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, dErrors.Wrap(errOr(err, jwt.ErrTokenInvalidClaims), dErrors.CodeUnauthorized, CredentialsError)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Use != want || strings.TrimSpace(claims.Subject) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, CredentialsError)
	}
	return claims, nil
}

// UserID parses the subject claim.
func (c *Claims) UserID() (id.UserID, error) {
	uid, err := id.ParseUserID(c.Subject)
	if err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, CredentialsError)
	}
	return uid, nil
}

// Session parses the session claim; the nil ID is returned when absent.
func (c *Claims) Session() id.SessionID {
	sid, err := id.ParseSessionID(c.SessionID)
	if err != nil {
		return id.SessionID{}
	}
	return sid
}

func errOr(err, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}
