package config

import "strings"

// Sanitize returns a copy of the config with credential secrets masked.
// It is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if cfg.Auth.Users != nil {
		sanitized.Auth.Users = make(map[string]string, len(cfg.Auth.Users))
		for name, secret := range cfg.Auth.Users {
			sanitized.Auth.Users[name] = maskSecret(secret)
		}
	}
	sanitized.Collector.AllowedOrigins = append([]string(nil), cfg.Collector.AllowedOrigins...)

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
