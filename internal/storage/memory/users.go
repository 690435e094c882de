package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/core/service"
)

var _ service.UserRepository = (*UserStore)(nil)

// UserStore holds the credential table.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewUserStore creates a user store seeded with users (username -> secret).
func NewUserStore(users map[string]string) *UserStore {
	s := &UserStore{}
	s.set(users)
	return s
}

// Secret returns the stored secret for username.
func (s *UserStore) Secret(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.users[username]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return secret, nil
}

// Replace swaps the whole credential table.
func (s *UserStore) Replace(_ context.Context, users map[string]string) error {
	s.set(users)
	return nil
}

// Usernames returns the sorted list of known users.
func (s *UserStore) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *UserStore) set(users map[string]string) {
	next := make(map[string]string, len(users))
	for k, v := range users {
		next[k] = v
	}

	s.mu.Lock()
	s.users = next
	s.mu.Unlock()
}
