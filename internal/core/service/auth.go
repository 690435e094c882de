package service

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/time/rate"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/pkg/token"
)

// UserRepository defines the storage interface for the credential table.
type UserRepository interface {
	// Secret returns the stored secret for username, or ErrUserNotFound.
	Secret(ctx context.Context, username string) (string, error)

	// Replace swaps the whole credential table.
	Replace(ctx context.Context, users map[string]string) error
}

// PasswordMode selects how stored secrets are compared.
type PasswordMode int

const (
	// PasswordPlaintext compares secrets with ==.
	PasswordPlaintext PasswordMode = iota

	// PasswordArgon2 stores argon2id hashes and compares in constant time.
	PasswordArgon2
)

// argon2id parameters: memory=16384 KiB, time=2, parallelism=2, keyLen=32.
const (
	argonTime    = 2
	argonMemory  = 16384
	argonThreads = 2
	argonKeyLen  = 32
	argonSaltLen = 16
)

const argonPrefix = "$argon2id$"

// AuthService checks credentials against a UserRepository.
type AuthService struct {
	users  UserRepository
	mode   PasswordMode
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepository, mode PasswordMode, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  users,
		mode:   mode,
		logger: logger,
	}
}

// Mode returns the password mode of the service.
func (s *AuthService) Mode() PasswordMode {
	return s.mode
}

// Authenticate verifies username and password.
// It returns ErrInvalidCredentials for unknown users and wrong passwords alike.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	secret, err := s.users.Secret(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	switch s.mode {
	case PasswordArgon2:
		ok, err := VerifyPassword(password, secret)
		if err != nil {
			s.logger.ErrorContext(ctx, "stored credential is malformed", "username", username, "error", err)
			return domain.ErrInvalidCredentials
		}
		if !ok {
			return domain.ErrInvalidCredentials
		}
	default:
		if secret != password {
			return domain.ErrInvalidCredentials
		}
	}

	return nil
}

// LoadUsers replaces the credential table.
// In argon2 mode plaintext secrets are hashed first; existing
// $argon2id$ entries are kept as they are.
func (s *AuthService) LoadUsers(ctx context.Context, users map[string]string) error {
	prepared := make(map[string]string, len(users))
	for name, secret := range users {
		if name == "" {
			return domain.ErrMissingArgument.WithDetails("username is required")
		}
		if s.mode == PasswordArgon2 && !IsPasswordHash(secret) {
			hash, err := HashPassword(secret)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", name, err)
			}
			secret = hash
		}
		prepared[name] = secret
	}

	if err := s.users.Replace(ctx, prepared); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	s.logger.Info("credential table loaded", "users", len(prepared))
	return nil
}

// HashPassword hashes secret with argon2id and a random salt.
// Format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
func HashPassword(secret string) (string, error) {
	salt, err := token.GenerateBytes(argonSaltLen)
	if err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// IsPasswordHash reports whether s looks like an argon2id hash.
func IsPasswordHash(s string) bool {
	return strings.HasPrefix(s, argonPrefix)
}

// VerifyPassword checks secret against an argon2id hash.
func VerifyPassword(secret, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, domain.ErrCredentialFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, domain.ErrCredentialFormat.WithDetails("unsupported version")
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, domain.ErrCredentialFormat.WithCause(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, domain.ErrCredentialFormat.WithCause(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, domain.ErrCredentialFormat.WithCause(err)
	}

	computed := argon2.IDKey([]byte(secret), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// LoginLimiter throttles login attempts per client IP.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type loginBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows attempts per interval with the given burst.
// A bucket unused for a whole interval is full again and may be pruned.
func NewLoginLimiter(attempts int, interval time.Duration) *LoginLimiter {
	return &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		limit:   rate.Every(interval / time.Duration(attempts)),
		burst:   attempts,
		idle:    interval,
		now:     time.Now,
	}
}

// Allow consumes one attempt for ip and reports whether it was permitted.
// A nil limiter permits everything.
func (l *LoginLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[ip]
	if !ok {
		b = &loginBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets the bucket of ip.
func (l *LoginLimiter) Reset(ip string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, ip)
}

// Prune drops buckets idle for at least one interval and returns how many
// were dropped.
func (l *LoginLimiter) Prune() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	n := 0
	for ip, b := range l.buckets {
		if !b.lastSeen.After(cutoff) {
			delete(l.buckets, ip)
			n++
		}
	}
	return n
}

// Len returns the number of tracked clients.
func (l *LoginLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RunPruner calls Prune every interval until ctx is cancelled.
func (l *LoginLimiter) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
