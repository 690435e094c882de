package domain

import "time"

// MaxSessionIDLength bounds the IDs the store accepts. Only planted IDs
// can exceed it; generated IDs are at most 43 characters.
const MaxSessionIDLength = 128

// Client identifies the browser presenting a session.
type Client struct {
	IP        string
	UserAgent string
}

// Equal reports whether both fingerprint fields match exactly.
func (c Client) Equal(other Client) bool {
	return c.IP == other.IP && c.UserAgent == other.UserAgent
}

// Session represents a logged-in browser session.
type Session struct {
	// ID is the value carried in the session_id cookie.
	ID string `json:"id"`

	// Username is the authenticated user.
	Username string `json:"username"`

	// IPAddress is the client IP at login. Empty when the session is unbound.
	IPAddress string `json:"ip_address,omitempty"`

	// UserAgent is the client user agent at login. Empty when unbound.
	UserAgent string `json:"user_agent,omitempty"`

	// Bound marks sessions that must be presented by the same client.
	Bound bool `json:"bound"`

	// CreatedAt is the session creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// ExpiresAt is the absolute expiration timestamp (Unix milliseconds).
	// Zero means the session never expires.
	ExpiresAt int64 `json:"expires_at"`
}

// NewSession creates a session for username stored under id.
func NewSession(id, username string) *Session {
	return &Session{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// Bind records the client fingerprint and marks the session as bound.
func (s *Session) Bind(c Client) {
	s.IPAddress = c.IP
	s.UserAgent = c.UserAgent
	s.Bound = true
}

// Client returns the fingerprint recorded at login.
func (s *Session) Client() Client {
	return Client{IP: s.IPAddress, UserAgent: s.UserAgent}
}

// Matches reports whether c may use this session.
// Unbound sessions match every client.
func (s *Session) Matches(c Client) bool {
	if !s.Bound {
		return true
	}
	return s.Client().Equal(c)
}

// SetExpiration sets the expiration time from a TTL duration.
// A non-positive TTL clears the expiration.
func (s *Session) SetExpiration(ttl time.Duration) {
	if ttl <= 0 {
		s.ExpiresAt = 0
		return
	}
	s.ExpiresAt = time.UnixMilli(s.CreatedAt).Add(ttl).UnixMilli()
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session is expired at the given instant.
func (s *Session) IsExpiredAt(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() > s.ExpiresAt
}

// Validate checks that the session can be stored. The client fingerprint
// and username are stored as presented and never rejected for length.
func (s *Session) Validate() error {
	switch {
	case s.ID == "":
		return ErrMissingArgument.WithDetails("id is required")
	case len(s.ID) > MaxSessionIDLength:
		return ErrMissingArgument.WithDetails("id exceeds 128 characters")
	case s.Username == "":
		return ErrMissingArgument.WithDetails("username is required")
	}
	return nil
}

// Clone creates a copy of the session.
func (s *Session) Clone() *Session {
	clone := *s
	return &clone
}

// CreatedAtTime returns CreatedAt as time.Time.
func (s *Session) CreatedAtTime() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// ExpiresAtTime returns ExpiresAt as time.Time, or the zero time.
func (s *Session) ExpiresAtTime() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.ExpiresAt)
}
