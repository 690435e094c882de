package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/yndnr/sessionlab-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	switch cfg.App {
	case AppVulnerable, AppHardened, AppCollector:
	default:
		return fmt.Errorf("unknown app %q", cfg.App)
	}

	if err := verifyHTTP(&cfg.HTTP); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}

	if cfg.App == AppCollector {
		return verifyCollector(&cfg.Collector)
	}

	if err := verifySession(cfg.App, &cfg.Session); err != nil {
		return err
	}
	return verifyAuth(cfg.App, &cfg.Auth)
}

func verifyHTTP(cfg *HTTPSection) error {
	if cfg.Addr == "" {
		return errors.New("http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("http.addr: %w", err)
	}

	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("http.tls_cert_file and http.tls_key_file must be set together")
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}

	if cfg.ShutdownTimeout <= 0 {
		return errors.New("http.shutdown_timeout must be positive")
	}
	return nil
}

func verifySession(app App, cfg *SessionSection) error {
	if cfg.ShardCount < 1 || cfg.ShardCount&(cfg.ShardCount-1) != 0 {
		return fmt.Errorf("session.shard_count must be a power of two, got %d", cfg.ShardCount)
	}
	if app == AppHardened && cfg.TTL <= 0 {
		return errors.New("session.ttl must be positive for the hardened app")
	}
	if cfg.SweepInterval < 0 {
		return errors.New("session.sweep_interval must not be negative")
	}
	return nil
}

func verifyAuth(app App, cfg *AuthSection) error {
	for name, secret := range cfg.Users {
		if name == "" || secret == "" {
			return errors.New("auth.users: empty username or secret")
		}
	}
	if app == AppHardened {
		if cfg.LoginAttempts < 1 {
			return errors.New("auth.login_attempts must be at least 1")
		}
		if cfg.LoginInterval <= 0 {
			return errors.New("auth.login_interval must be positive")
		}
	}
	return nil
}

func verifyCollector(cfg *CollectorSection) error {
	if cfg.LogFile == "" {
		return errors.New("collector.log_file is required")
	}
	if cfg.Recent < 1 {
		return errors.New("collector.recent must be at least 1")
	}
	if cfg.VictimURL != "" {
		u, err := url.Parse(cfg.VictimURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("collector.victim_url %q must be an absolute http(s) URL", cfg.VictimURL)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Format {
	case "", "text", "console", "json":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
