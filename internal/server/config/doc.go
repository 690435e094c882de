// Package config defines the SessionLab server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: per-app defaults
//   - verify.go: validation
//   - sanitize.go: copy with secrets masked, for logging
//
// Configuration is loaded via internal/infra/confloader.
package config
