package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
)

// ClientIP returns the client address. Forwarding headers are honoured
// only when trustProxy is set; otherwise any client could pick its own IP
// and defeat session binding.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientFromRequest returns the fingerprint a hardened session is bound to.
func ClientFromRequest(r *http.Request, trustProxy bool) domain.Client {
	return domain.Client{
		IP:        ClientIP(r, trustProxy),
		UserAgent: r.UserAgent(),
	}
}
