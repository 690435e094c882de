// Package logger provides structured logging for SessionLab.
//
// It wraps log/slog:
//
//   - logger.go: handler construction and the default logger
//   - context.go: request ID propagation into log records
//   - redact.go: masking of credentials and session identifiers
//
// Services take a *slog.Logger (Logger.Slog) and log with the *Context
// methods; records logged inside a request carry its request_id.
package logger
