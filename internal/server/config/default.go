package config

import "time"

// Default configuration values.
const (
	DefaultVulnerableAddr = "127.0.0.1:5001"
	DefaultHardenedAddr   = "127.0.0.1:5002"
	DefaultCollectorAddr  = "127.0.0.1:8080"

	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultShardCount    = 16

	DefaultLoginAttempts = 5
	DefaultLoginInterval = time.Minute

	DefaultCaptureLogFile = "stolen_cookies.log"
	DefaultRecentCaptures = 100
	DefaultVictimURL      = "http://localhost:5001"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultUsers is the demo credential table.
func DefaultUsers() map[string]string {
	return map[string]string{
		"alice": "password123",
		"bob":   "qwerty456",
	}
}

// Default returns the default configuration for app.
func Default(app App) *ServerConfig {
	cfg := &ServerConfig{
		App: app,
		HTTP: HTTPSection{
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Session: SessionSection{
			ShardCount: DefaultShardCount,
		},
		Cookie: CookieSection{
			Secure: true,
		},
		Collector: CollectorSection{
			LogFile:        DefaultCaptureLogFile,
			Recent:         DefaultRecentCaptures,
			AllowedOrigins: []string{"*"},
			VictimURL:      DefaultVictimURL,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}

	switch app {
	case AppVulnerable:
		cfg.HTTP.Addr = DefaultVulnerableAddr
	case AppHardened:
		cfg.HTTP.Addr = DefaultHardenedAddr
		cfg.Session.TTL = DefaultSessionTTL
		cfg.Session.SweepInterval = DefaultSweepInterval
		cfg.Auth.LoginAttempts = DefaultLoginAttempts
		cfg.Auth.LoginInterval = DefaultLoginInterval
	case AppCollector:
		cfg.HTTP.Addr = DefaultCollectorAddr
	}

	return cfg
}
