package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
	"github.com/yndnr/sessionlab-go/pkg/token"
)

// SessionRepository defines the storage interface for session operations.
type SessionRepository interface {
	// Create stores a new session; it fails with ErrSessionConflict if the ID exists.
	Create(ctx context.Context, session *domain.Session) error

	// Put stores a session, replacing any session with the same ID.
	Put(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete deletes a session by ID.
	Delete(ctx context.Context, id string) error

	// DeleteExpired deletes all expired sessions and returns the count.
	DeleteExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// Policy controls how sessions are issued and checked.
type Policy struct {
	// Name labels the policy in logs.
	Name string

	// ReuseSuppliedID keeps a session ID the browser already carries
	// instead of minting a new one at login.
	ReuseSuppliedID bool

	// BindClient records the client fingerprint at login and rejects
	// the session when another client presents it.
	BindClient bool

	// TTL is the server-side session lifetime. Zero disables expiry.
	TTL time.Duration

	// NewID mints a session ID.
	NewID func() (string, error)
}

// Vulnerable session ID length in random bytes (16 hex chars).
const vulnerableIDBytes = 8

// DefaultHardenedTTL matches the hardened cookie Max-Age.
const DefaultHardenedTTL = 30 * time.Minute

// VulnerablePolicy reuses supplied IDs, never binds and never expires.
func VulnerablePolicy() Policy {
	return Policy{
		Name:            "vulnerable",
		ReuseSuppliedID: true,
		NewID: func() (string, error) {
			return token.GenerateHex(vulnerableIDBytes)
		},
	}
}

// HardenedPolicy regenerates IDs, binds to the client and expires after ttl.
func HardenedPolicy(ttl time.Duration) Policy {
	if ttl <= 0 {
		ttl = DefaultHardenedTTL
	}
	return Policy{
		Name:       "hardened",
		BindClient: true,
		TTL:        ttl,
		NewID:      token.Generate,
	}
}

// maxIDAttempts bounds regeneration on ID collisions.
const maxIDAttempts = 3

// SessionService handles session lifecycle operations.
type SessionService struct {
	repo    SessionRepository
	auth    *AuthService
	policy  Policy
	logger  *slog.Logger
	metrics *metric.Registry
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo SessionRepository, auth *AuthService, policy Policy, logger *slog.Logger, metrics *metric.Registry) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.NewID == nil {
		policy.NewID = token.Generate
	}
	return &SessionService{
		repo:    repo,
		auth:    auth,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
	}
}

// Policy returns the policy the service was built with.
func (s *SessionService) Policy() Policy {
	return s.policy
}

// LoginRequest contains parameters for a login.
type LoginRequest struct {
	Username   string
	Password   string
	SuppliedID string // session_id cookie already present, if any
	Client     domain.Client
}

// LoginResponse contains the result of a login.
type LoginResponse struct {
	Session *domain.Session
	Reused  bool // the supplied ID was kept
}

// Login checks credentials and stores a session for the user.
func (s *SessionService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.auth.Authenticate(ctx, req.Username, req.Password); err != nil {
		s.metrics.ObserveLogin(metric.LoginFailure)
		s.logger.InfoContext(ctx, "login failed", "username", req.Username, "client_ip", req.Client.IP)
		return nil, err
	}

	var (
		session *domain.Session
		reused  bool
		err     error
	)

	if s.policy.ReuseSuppliedID && req.SuppliedID != "" {
		session = s.newSession(req.SuppliedID, req)
		reused = true
		err = s.repo.Put(ctx, session)
	} else {
		if req.SuppliedID != "" {
			// Drop whatever the old ID pointed at; it is never promoted.
			if derr := s.repo.Delete(ctx, req.SuppliedID); derr != nil && !errors.Is(derr, domain.ErrSessionNotFound) {
				s.logger.WarnContext(ctx, "failed to drop supplied session", "error", derr)
			}
		}
		session, err = s.createFresh(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveLogin(metric.LoginSuccess)
	s.refreshGauge(ctx)

	s.logger.InfoContext(ctx, "login succeeded",
		"policy", s.policy.Name,
		"username", session.Username,
		"session_id", session.ID,
		"reused_id", reused,
		"client_ip", req.Client.IP,
	)

	return &LoginResponse{Session: session, Reused: reused}, nil
}

// createFresh mints a new ID different from the supplied one and stores the session.
func (s *SessionService) createFresh(ctx context.Context, req *LoginRequest) (*domain.Session, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.policy.NewID()
		if err != nil {
			return nil, domain.ErrInternalServer.WithCause(err)
		}
		if id == req.SuppliedID {
			continue
		}

		session := s.newSession(id, req)
		err = s.repo.Create(ctx, session)
		if errors.Is(err, domain.ErrSessionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return session, nil
	}
	return nil, domain.ErrSessionConflict.WithDetails("could not mint a unique session id")
}

func (s *SessionService) newSession(id string, req *LoginRequest) *domain.Session {
	session := domain.NewSession(id, req.Username)
	if s.policy.BindClient {
		session.Bind(req.Client)
	}
	session.SetExpiration(s.policy.TTL)
	return session
}

// Validate resolves the session presented by client.
//
// Expired sessions and sessions presented by a different client (when the
// policy binds clients) are deleted before the error is returned.
func (s *SessionService) Validate(ctx context.Context, id string, client domain.Client) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.repo.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		s.drop(ctx, id)
		s.metrics.ObserveRejection(metric.RejectExpired)
		return nil, err
	case errors.Is(err, domain.ErrSessionNotFound):
		s.metrics.ObserveRejection(metric.RejectUnknown)
		return nil, err
	case err != nil:
		return nil, err
	}

	if s.policy.BindClient && !session.Matches(client) {
		s.drop(ctx, id)
		s.metrics.ObserveRejection(metric.RejectMismatch)
		s.logger.WarnContext(ctx, "session presented by a different client, invalidated",
			"username", session.Username,
			"session_id", id,
			"bound_ip", session.IPAddress,
			"bound_user_agent", session.UserAgent,
			"client_ip", client.IP,
			"client_user_agent", client.UserAgent,
		)
		return nil, domain.ErrSessionBindingMismatch
	}

	return session, nil
}

// Logout deletes the session. Unknown IDs are not an error.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	s.refreshGauge(ctx)
	s.logger.InfoContext(ctx, "session logged out", "session_id", id)
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return n, domain.ErrStorageError.WithCause(err)
	}
	if n > 0 {
		s.logger.Debug("expired sessions removed", "count", n)
		s.refreshGauge(ctx)
	}
	return n, nil
}

// RunJanitor calls Sweep every interval until ctx is cancelled.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("session sweep failed", "error", err)
			}
		}
	}
}

func (s *SessionService) drop(ctx context.Context, id string) {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.ErrorContext(ctx, "failed to delete session", "error", err)
	}
	s.refreshGauge(ctx)
}

func (s *SessionService) refreshGauge(ctx context.Context) {
	if n, err := s.repo.Count(ctx); err == nil {
		s.metrics.SetSessionsActive(n)
	}
}
