package logger

import (
	"log/slog"
	"strings"
)

// Keys whose values are replaced entirely.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"cookie",
	"credential",
	"authorization",
}

// Keys whose values are partially masked so requests stay correlatable.
var maskedKeyPatterns = []string{
	"session_id",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks string attributes with sensitive keys, recursing into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsMaskedKey(a.Key) {
			return slog.String(a.Key, MaskValue(v))
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// MaskValue keeps the first and last four characters of value.
func MaskValue(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

// IsSensitiveKey reports whether a key's value must never be logged.
func IsSensitiveKey(key string) bool {
	return containsAny(strings.ToLower(key), sensitiveKeyPatterns)
}

// IsMaskedKey reports whether a key's value is logged partially masked.
func IsMaskedKey(key string) bool {
	return containsAny(strings.ToLower(key), maskedKeyPatterns)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
