package config

// ToMap returns the configuration as a nested map keyed like the YAML
// file. Durations are rendered as strings. Pass a Sanitize'd config when
// the result is printed.
func ToMap(cfg *ServerConfig) map[string]any {
	users := make(map[string]any, len(cfg.Auth.Users))
	for name, secret := range cfg.Auth.Users {
		users[name] = secret
	}
	origins := make([]any, 0, len(cfg.Collector.AllowedOrigins))
	for _, o := range cfg.Collector.AllowedOrigins {
		origins = append(origins, o)
	}

	return map[string]any{
		"http": map[string]any{
			"addr":             cfg.HTTP.Addr,
			"tls_cert_file":    cfg.HTTP.TLSCertFile,
			"tls_key_file":     cfg.HTTP.TLSKeyFile,
			"trust_proxy":      cfg.HTTP.TrustProxy,
			"read_timeout":     cfg.HTTP.ReadTimeout.String(),
			"write_timeout":    cfg.HTTP.WriteTimeout.String(),
			"shutdown_timeout": cfg.HTTP.ShutdownTimeout.String(),
		},
		"session": map[string]any{
			"ttl":            cfg.Session.TTL.String(),
			"sweep_interval": cfg.Session.SweepInterval.String(),
			"shard_count":    cfg.Session.ShardCount,
		},
		"cookie": map[string]any{
			"secure": cfg.Cookie.Secure,
		},
		"auth": map[string]any{
			"users":          users,
			"users_file":     cfg.Auth.UsersFile,
			"login_attempts": cfg.Auth.LoginAttempts,
			"login_interval": cfg.Auth.LoginInterval.String(),
		},
		"collector": map[string]any{
			"log_file":        cfg.Collector.LogFile,
			"recent":          cfg.Collector.Recent,
			"allowed_origins": origins,
			"victim_url":      cfg.Collector.VictimURL,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"metrics": map[string]any{
			"enabled": cfg.Metrics.Enabled,
		},
	}
}
