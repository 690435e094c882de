package config

import "time"

// App selects which SessionLab application a config is for.
type App string

// Applications.
const (
	AppVulnerable App = "vulnerable"
	AppHardened   App = "hardened"
	AppCollector  App = "collector"
)

// ServerConfig is the root configuration for a sessionlab app.
type ServerConfig struct {
	App       App              `koanf:"-"`
	HTTP      HTTPSection      `koanf:"http"`
	Session   SessionSection   `koanf:"session"`
	Cookie    CookieSection    `koanf:"cookie"`
	Auth      AuthSection      `koanf:"auth"`
	Collector CollectorSection `koanf:"collector"`
	Log       LogSection       `koanf:"log"`
	Metrics   MetricsSection   `koanf:"metrics"`
}

// HTTPSection configures the HTTP listener.
type HTTPSection struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `koanf:"trust_proxy"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SessionSection configures server-side session lifetime.
// Only the hardened app expires sessions.
type SessionSection struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	ShardCount    int           `koanf:"shard_count"`
}

// CookieSection configures the session cookie of the hardened app.
type CookieSection struct {
	// Secure sets the Secure flag. Turn it off to test over plain HTTP.
	Secure bool `koanf:"secure"`
}

// AuthSection configures credentials and login throttling.
type AuthSection struct {
	// Users is the inline credential table (username -> secret).
	Users map[string]string `koanf:"users"`

	// UsersFile replaces Users when set and is reloaded on change.
	UsersFile string `koanf:"users_file"`

	// LoginAttempts per LoginInterval per client IP (hardened only).
	LoginAttempts int           `koanf:"login_attempts"`
	LoginInterval time.Duration `koanf:"login_interval"`
}

// InitialUsers returns the inline table, or the demo users when neither
// an inline table nor a users file is configured.
func (a AuthSection) InitialUsers() map[string]string {
	if len(a.Users) == 0 && a.UsersFile == "" {
		return DefaultUsers()
	}
	return a.Users
}

// CollectorSection configures the collector app.
type CollectorSection struct {
	LogFile        string   `koanf:"log_file"`
	Recent         int      `koanf:"recent"`
	AllowedOrigins []string `koanf:"allowed_origins"`

	// VictimURL is the vulnerable app base URL shown in example payloads.
	VictimURL string `koanf:"victim_url"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the /metrics endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}
