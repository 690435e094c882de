package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/sessionlab-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics *metric.Registry

	// TrustProxy takes client IPs in access logs from forwarding headers.
	TrustProxy bool

	// SecurityHeaders adds nosniff, frame denial and no-referrer headers.
	SecurityHeaders bool

	// CORSAllowedOrigins enables CORS when non-nil. An empty list allows all.
	CORSAllowedOrigins []string
}

// NewVictimRouter wraps a victim app handler in the middleware chain.
func NewVictimRouter(h *handler.Victim, cfg *RouterConfig) http.Handler {
	return newRouter(h, cfg)
}

// NewCollectorRouter wraps the collector handler in the middleware chain.
func NewCollectorRouter(h *handler.Collector, cfg *RouterConfig) http.Handler {
	return newRouter(h, cfg)
}

// newRouter builds the chain: Recover -> RequestID -> [SecurityHeaders] ->
// [CORS] -> Audit -> handler.
func newRouter(h http.Handler, cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
	}
	if cfg.SecurityHeaders {
		middlewares = append(middlewares, SecurityHeaders())
	}
	if cfg.CORSAllowedOrigins != nil {
		middlewares = append(middlewares, CORS(cfg.CORSAllowedOrigins))
	}
	middlewares = append(middlewares, Audit(log, cfg.Metrics, cfg.TrustProxy))

	return Chain(h, middlewares...)
}
