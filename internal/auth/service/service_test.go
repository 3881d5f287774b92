package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"coinquest/internal/auth/models"
	"coinquest/internal/auth/service/mocks"
	sessionStore "coinquest/internal/auth/store/session"
	userStore "coinquest/internal/auth/store/user"
	jwttoken "coinquest/internal/jwt_token"
	logmodels "coinquest/internal/systemlog/models"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/requestcontext"
)

const (
	testSigningKey = "test-signing-key-that-is-long-enough"
	chromeOnMac    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	trl      *mocks.MockTokenRevocationList
	recorder *mocks.MockEventRecorder
	users    *userStore.InMemoryUserStore
	sessions *sessionStore.InMemorySessionStore
	tokens   *jwttoken.JWTService
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.trl = mocks.NewMockTokenRevocationList(s.ctrl)
	s.recorder = mocks.NewMockEventRecorder(s.ctrl)
	s.users = userStore.New()
	s.sessions = sessionStore.New()
	s.tokens = jwttoken.NewJWTService(testSigningKey, "coinquest", 7*24*time.Hour)

	svc, err := New(s.users, s.sessions, s.tokens, s.trl,
		Config{AccessTTL: 30 * time.Minute, SessionTTL: 7 * 24 * time.Hour},
		WithEventRecorder(s.recorder),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) register(email, username, password string) *models.User {
	s.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	user, err := s.service.Register(context.Background(), models.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	s.Require().NoError(err)
	return user
}

func (s *ServiceSuite) login(identifier, password string) *models.TokenResult {
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.7", chromeOnMac)
	result, err := s.service.Login(ctx, identifier, password)
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) TestRegister() {
	s.Run("stores a bcrypt hash and records the event", func() {
		s.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event logmodels.Event) error {
				s.Equal(logmodels.LevelInfo, event.Level)
				s.Equal("auth", event.Component)
				s.Equal("user registered", event.Message)
				s.NotNil(event.UserID)
				return nil
			})
		user, err := s.service.Register(context.Background(), models.RegisterRequest{
			Email:    "Alice@Example.com",
			Username: "alice",
			Password: "correct-horse",
		})
		s.Require().NoError(err)
		s.Equal("alice@example.com", user.Email)
		s.True(user.IsActive)
		s.False(user.IsSuperuser)
		s.NotEqual("correct-horse", user.HashedPassword)

		stored, err := s.users.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Equal(user.HashedPassword, stored.HashedPassword)
	})

	s.Run("duplicate email", func() {
		_, err := s.service.Register(context.Background(), models.RegisterRequest{
			Email: "alice@example.com", Username: "alice2", Password: "correct-horse",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.EqualError(err, "Email already registered")
	})

	s.Run("duplicate username", func() {
		_, err := s.service.Register(context.Background(), models.RegisterRequest{
			Email: "other@example.com", Username: "alice", Password: "correct-horse",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.EqualError(err, "Username already taken")
	})

	s.Run("short password", func() {
		_, err := s.service.Register(context.Background(), models.RegisterRequest{
			Email: "bob@example.com", Username: "bob", Password: "short",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("malformed email", func() {
		_, err := s.service.Register(context.Background(), models.RegisterRequest{
			Email: "not-an-email", Username: "bob", Password: "correct-horse",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestLogin() {
	user := s.register("carol@example.com", "carol", "correct-horse")

	s.Run("by username or email", func() {
		for _, identifier := range []string{"carol", "CAROL@example.com"} {
			result := s.login(identifier, "correct-horse")
			s.Equal(models.TokenTypeBearer, result.TokenType)
			s.NotEmpty(result.AccessToken)
			s.NotEmpty(result.RefreshToken)
		}
		sessions, err := s.sessions.ListByUser(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Len(sessions, 2)
		s.Equal("203.0.113.7", sessions[0].IPAddress)
		s.Equal(chromeOnMac, sessions[0].UserAgent)
		s.Contains(sessions[0].DeviceLabel, "Chrome")
	})

	s.Run("wrong password and unknown account fail identically", func() {
		s.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, wrongPassword := s.service.Login(context.Background(), "carol", "wrong-password")
		_, unknownUser := s.service.Login(context.Background(), "nobody", "correct-horse")

		s.True(dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(unknownUser, dErrors.CodeUnauthorized))
		s.Equal(wrongPassword.Error(), unknownUser.Error())
	})

	s.Run("inactive account", func() {
		s.Require().NoError(s.users.SetActive(context.Background(), user.ID, false))
		defer func() { s.Require().NoError(s.users.SetActive(context.Background(), user.ID, true)) }()

		_, err := s.service.Login(context.Background(), "carol", "correct-horse")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.EqualError(err, "Inactive user")
	})
}

func (s *ServiceSuite) TestResolvePrincipal() {
	user := s.register("dave@example.com", "dave", "correct-horse")
	tokens := s.login("dave", "correct-horse")

	s.Run("valid access token", func() {
		s.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)
		principal, err := s.service.ResolvePrincipal(context.Background(), tokens.AccessToken)
		s.Require().NoError(err)
		s.Equal(user.ID, principal.UserID)
		s.False(principal.SessionID.IsNil())
		s.NotEmpty(principal.TokenID)
		s.True(principal.TokenExpiry.After(time.Now()))
	})

	s.Run("refresh token is not an access token", func() {
		_, err := s.service.ResolvePrincipal(context.Background(), tokens.RefreshToken)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("revoked token", func() {
		s.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(true, nil)
		_, err := s.service.ResolvePrincipal(context.Background(), tokens.AccessToken)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("inactive user is a bad request", func() {
		s.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)
		s.Require().NoError(s.users.SetActive(context.Background(), user.ID, false))
		defer func() { s.Require().NoError(s.users.SetActive(context.Background(), user.ID, true)) }()

		_, err := s.service.ResolvePrincipal(context.Background(), tokens.AccessToken)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("token signed with another key", func() {
		other := jwttoken.NewJWTService("a-completely-different-signing-key", "coinquest", time.Hour)
		forged, err := other.IssueAccessToken(user.ID, principalSession(s, tokens), time.Minute)
		s.Require().NoError(err)
		_, err = s.service.ResolvePrincipal(context.Background(), forged.Token)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func principalSession(s *ServiceSuite, tokens *models.TokenResult) id.SessionID {
	claims, err := s.tokens.VerifyAccessToken(tokens.AccessToken)
	s.Require().NoError(err)
	return claims.Session()
}

func (s *ServiceSuite) TestRefresh() {
	s.register("erin@example.com", "erin", "correct-horse")
	tokens := s.login("erin", "correct-horse")

	s.Run("mints a new access token and keeps the refresh token", func() {
		result, err := s.service.Refresh(context.Background(), tokens.RefreshToken)
		s.Require().NoError(err)
		s.Equal(tokens.RefreshToken, result.RefreshToken)
		s.NotEmpty(result.AccessToken)

		claims, err := s.tokens.VerifyAccessToken(result.AccessToken)
		s.Require().NoError(err)
		s.Equal(principalSession(s, tokens), claims.Session())
	})

	s.Run("access token is rejected", func() {
		_, err := s.service.Refresh(context.Background(), tokens.AccessToken)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("session deleted", func() {
		s.Require().NoError(s.sessions.Delete(context.Background(), principalSession(s, tokens)))
		_, err := s.service.Refresh(context.Background(), tokens.RefreshToken)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestLogout() {
	s.register("frank@example.com", "frank", "correct-horse")
	tokens := s.login("frank", "correct-horse")

	s.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)
	principal, err := s.service.ResolvePrincipal(context.Background(), tokens.AccessToken)
	s.Require().NoError(err)

	s.trl.EXPECT().RevokeToken(gomock.Any(), principal.TokenID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, ttl time.Duration) error {
			s.Greater(ttl, 29*time.Minute)
			return nil
		})
	s.Require().NoError(s.service.Logout(context.Background(), principal))

	_, err = s.sessions.FindByID(context.Background(), principal.SessionID)
	s.Error(err)

	s.trl.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)
	_, err = s.service.ResolvePrincipal(context.Background(), tokens.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestSessionsAndPurge() {
	user := s.register("grace@example.com", "grace", "correct-horse")
	first := s.login("grace", "correct-horse")
	s.login("grace", "correct-horse")
	current := principalSession(s, first)

	result, err := s.service.ListSessions(context.Background(), user.ID, current)
	s.Require().NoError(err)
	s.Require().Len(result.Sessions, 2)
	currentCount := 0
	for _, summary := range result.Sessions {
		if summary.IsCurrent {
			currentCount++
			s.Equal(current.String(), summary.SessionID)
		}
	}
	s.Equal(1, currentCount)

	s.Run("purge removes only expired sessions", func() {
		removed, err := s.service.PurgeExpiredSessions(context.Background())
		s.Require().NoError(err)
		s.Zero(removed)

		s.recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event logmodels.Event) error {
				s.Equal("removed=2", event.Details)
				return nil
			})
		future := requestcontext.WithTime(context.Background(), time.Now().Add(8*24*time.Hour))
		removed, err = s.service.PurgeExpiredSessions(future)
		s.Require().NoError(err)
		s.Equal(2, removed)

		result, err := s.service.ListSessions(context.Background(), user.ID, current)
		s.Require().NoError(err)
		s.Empty(result.Sessions)
	})
}
