package memory

import (
	"context"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/core/service"
	"github.com/yndnr/sessionlab-go/pkg/cmap"
)

var _ service.SessionRepository = (*Store)(nil)

// Store provides in-memory session storage.
type Store struct {
	sessions *cmap.Map[*domain.Session]
	now      func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithShardCount sets the number of shards of the underlying map.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.sessions = cmap.NewWithShards[*domain.Session](n)
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: cmap.New[*domain.Session](),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get retrieves a session by ID.
// Expired sessions are reported with ErrSessionExpired and left in place;
// callers decide whether to delete them.
func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if session.IsExpiredAt(s.now()) {
		return nil, domain.ErrSessionExpired
	}

	return session.Clone(), nil
}

// Create stores a new session. It fails if the ID is already taken.
func (s *Store) Create(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	if !s.sessions.SetIfAbsent(session.ID, session.Clone()) {
		return domain.ErrSessionConflict
	}
	return nil
}

// Put stores a session, replacing any session with the same ID.
func (s *Store) Put(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.sessions.Set(session.ID, session.Clone())
	return nil
}

// Delete removes a session by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	if _, ok := s.sessions.Pop(id); !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes every expired session and returns how many were removed.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	removed := 0

	for _, id := range s.sessions.Keys() {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if s.sessions.RemoveIf(id, func(sess *domain.Session) bool {
			return sess.IsExpiredAt(now)
		}) {
			removed++
		}
	}

	return removed, nil
}

// Count returns the number of stored sessions, expired ones included.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.sessions.Count(), nil
}
