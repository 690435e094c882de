package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/view"
	"github.com/yndnr/sessionlab-go/internal/telemetry/logger"
)

// base holds what every app handler needs.
type base struct {
	app     string
	views   view.Renderer
	logger  *slog.Logger
	metrics http.Handler
	mux     *http.ServeMux
}

func newBase(app string, views view.Renderer, log *slog.Logger, metrics http.Handler) base {
	if log == nil {
		log = slog.Default()
	}
	return base{
		app:     app,
		views:   views,
		logger:  log,
		metrics: metrics,
		mux:     http.NewServeMux(),
	}
}

func (b *base) registerCommon() {
	b.mux.HandleFunc("GET /health", b.handleHealth)
	if b.metrics != nil {
		b.mux.Handle("GET /metrics", b.metrics)
	}
}

// handleHealth handles GET /health.
func (b *base) handleHealth(w http.ResponseWriter, r *http.Request) {
	b.writeJSON(w, r, http.StatusOK, &HealthResponse{
		Status:  "ok",
		App:     b.app,
		Version: buildinfo.Get().Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// render writes a page, or a plain 500 if the template fails.
func (b *base) render(w http.ResponseWriter, r *http.Request, status int, page string, data *view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var sb strings.Builder
	if err := b.views.Render(&sb, page, data); err != nil {
		b.internalError(w, r, err)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}

func (b *base) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(logger.RequestIDFromContext(r.Context()), data)); err != nil {
		b.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (b *base) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, msg)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (b *base) internalError(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"error", err,
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	code := domain.GetErrorCode(err)
	if code == "" {
		code = domain.ErrInternalServer.Code
	}
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("internal server error\n"))
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}
