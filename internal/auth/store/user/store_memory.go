package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"coinquest/internal/auth/models"
	id "coinquest/pkg/domain"
	"coinquest/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in process memory. Email and username
// uniqueness mirror the Postgres unique indexes.
type InMemoryUserStore struct {
	mu         sync.RWMutex
	users      map[id.UserID]*models.User
	byEmail    map[string]id.UserID
	byUsername map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:      make(map[id.UserID]*models.User),
		byEmail:    make(map[string]id.UserID),
		byUsername: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	email := models.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("email %q: %w", email, sentinel.ErrConflict)
	}
	if _, ok := s.byUsername[user.Username]; ok {
		return fmt.Errorf("username %q: %w", user.Username, sentinel.ErrConflict)
	}
	stored := *user
	stored.Email = email
	s.users[user.ID] = &stored
	s.byEmail[email] = user.ID
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyOf(userID)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.copyOf(userID)
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byUsername[strings.TrimSpace(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.copyOf(userID)
}

// FindByLogin matches identifier against the username first, then the email.
func (s *InMemoryUserStore) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	return s.FindByEmail(ctx, identifier)
}

func (s *InMemoryUserStore) SetSuperuser(_ context.Context, username string, superuser bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.byUsername[username]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.users[userID].IsSuperuser = superuser
	return nil
}

func (s *InMemoryUserStore) SetActive(_ context.Context, userID id.UserID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.IsActive = active
	return nil
}

func (s *InMemoryUserStore) copyOf(userID id.UserID) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *user
	return &out, nil
}
