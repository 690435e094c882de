package service

import (
	"context"
	"sync"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
)

// mockSessionRepo is a map-backed SessionRepository for testing.
type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return domain.ErrSessionConflict
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *mockSessionRepo) Put(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *mockSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.IsExpired() {
		return nil, domain.ErrSessionExpired
	}
	return s.Clone(), nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

func (m *mockSessionRepo) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// expire backdates a stored session so that it is already expired.
func (m *mockSessionRepo) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.ExpiresAt = s.CreatedAt - 1
	}
}

// mockUserRepo is a map-backed UserRepository for testing.
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]string)}
}

func (m *mockUserRepo) Secret(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.users[username]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return s, nil
}

func (m *mockUserRepo) Replace(_ context.Context, users map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]string, len(users))
	for k, v := range users {
		m.users[k] = v
	}
	return nil
}

// memorySink collects capture log lines.
type memorySink struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (s *memorySink) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, line)
	return nil
}

var demoUsers = map[string]string{
	"alice": "password123",
	"bob":   "qwerty456",
}
