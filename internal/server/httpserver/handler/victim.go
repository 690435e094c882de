package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/core/service"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/view"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

// Login page messages.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgTooManyAttempts    = "Too many login attempts"
)

// VictimConfig configures a victim app handler.
type VictimConfig struct {
	// App is shown in page titles, e.g. "Vulnerable App".
	App string
	// Variant is shown in the login heading, e.g. "Vulnerable".
	Variant string

	Sessions *service.SessionService
	// Limiter throttles POST /login per client IP. Nil disables throttling.
	Limiter *service.LoginLimiter
	Views   view.Renderer
	Cookie  CookiePolicy

	// TrustProxy takes the client IP from forwarding headers.
	TrustProxy bool

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Victim serves the pages of the vulnerable and hardened apps. Which
// weaknesses are present follows from the session policy, the renderer
// and the cookie policy it is built with.
type Victim struct {
	base
	cfg      VictimConfig
	hardened bool
}

// NewVictim creates a victim app handler.
func NewVictim(cfg VictimConfig) *Victim {
	var metricsHandler http.Handler
	if cfg.Metrics != nil {
		metricsHandler = cfg.Metrics.Handler()
	}

	h := &Victim{
		base:     newBase(cfg.App, cfg.Views, cfg.Logger, metricsHandler),
		cfg:      cfg,
		hardened: cfg.Sessions.Policy().BindClient,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Victim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Victim) registerRoutes() {
	h.registerCommon()

	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("GET /login", h.handleLoginPage)
	h.mux.HandleFunc("POST /login", h.handleLogin)
	h.mux.HandleFunc("GET /dashboard", h.requireSession(h.handleDashboard))
	h.mux.HandleFunc("GET /search", h.requireSession(h.handleSearch))
	h.mux.HandleFunc("POST /profile", h.requireSession(h.handleProfile))
	h.mux.HandleFunc("GET /logout", h.handleLogout)
}

func (h *Victim) page(name string) *view.Page {
	return &view.Page{
		App:      h.cfg.App,
		Name:     name,
		Variant:  h.cfg.Variant,
		Hardened: h.hardened,
	}
}

// handleIndex handles GET /.
func (h *Victim) handleIndex(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/login")
}

// handleLoginPage handles GET /login.
func (h *Victim) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// The vulnerable app adopts any session ID offered in the link.
	if !h.hardened {
		if fixed := r.URL.Query().Get(SessionCookieName); fixed != "" {
			h.cfg.Cookie.Set(w, fixed)
		}
	}
	h.render(w, r, http.StatusOK, view.PageLogin, h.page("Login"))
}

// handleLogin handles POST /login.
func (h *Victim) handleLogin(w http.ResponseWriter, r *http.Request) {
	client := ClientFromRequest(r, h.cfg.TrustProxy)

	if !h.cfg.Limiter.Allow(client.IP) {
		h.cfg.Metrics.ObserveLogin(metric.LoginThrottled)
		h.logger.WarnContext(r.Context(), "login throttled",
			"client_ip", client.IP,
		)
		p := h.page("Login")
		p.Error = MsgTooManyAttempts
		w.Header().Set("X-Error-Code", domain.ErrLoginThrottled.Code)
		h.render(w, r, http.StatusTooManyRequests, view.PageLogin, p)
		return
	}

	supplied := sessionIDFromRequest(r)
	if h.cfg.Sessions.Policy().ReuseSuppliedID && len(supplied) > domain.MaxSessionIDLength {
		h.cfg.Cookie.Expire(w)
		http.Error(w, "bad session id", http.StatusBadRequest)
		return
	}

	resp, err := h.cfg.Sessions.Login(r.Context(), &service.LoginRequest{
		Username:   r.PostFormValue("username"),
		Password:   r.PostFormValue("password"),
		SuppliedID: supplied,
		Client:     client,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		p := h.page("Login")
		p.Error = MsgInvalidCredentials
		h.render(w, r, http.StatusOK, view.PageLogin, p)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	h.cfg.Limiter.Reset(client.IP)
	h.cfg.Cookie.Set(w, resp.Session.ID)
	redirect(w, r, "/dashboard")
}

// requireSession resolves the session cookie, or redirects to /login.
func (h *Victim) requireSession(next func(http.ResponseWriter, *http.Request, *domain.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionIDFromRequest(r)
		session, err := h.cfg.Sessions.Validate(r.Context(), id, ClientFromRequest(r, h.cfg.TrustProxy))
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) &&
				!errors.Is(err, domain.ErrSessionBindingMismatch) {
				h.internalError(w, r, err)
				return
			}
			if id != "" && h.hardened {
				h.cfg.Cookie.Expire(w)
			}
			redirect(w, r, "/login")
			return
		}

		if h.hardened {
			w.Header().Set("Cache-Control", "no-store")
		}
		next(w, r, session)
	}
}

// handleDashboard handles GET /dashboard.
func (h *Victim) handleDashboard(w http.ResponseWriter, r *http.Request, s *domain.Session) {
	p := h.page("Dashboard")
	p.Username = s.Username
	p.DisplayName = r.URL.Query().Get("display_name")
	h.render(w, r, http.StatusOK, view.PageDashboard, p)
}

// handleSearch handles GET /search.
func (h *Victim) handleSearch(w http.ResponseWriter, r *http.Request, s *domain.Session) {
	p := h.page("Search")
	p.Username = s.Username
	p.Query = r.URL.Query().Get("q")
	h.render(w, r, http.StatusOK, view.PageSearch, p)
}

// handleProfile handles POST /profile.
func (h *Victim) handleProfile(w http.ResponseWriter, r *http.Request, _ *domain.Session) {
	name := r.PostFormValue("display_name")

	if h.hardened {
		redirect(w, r, "/dashboard?"+url.Values{"display_name": {name}}.Encode())
		return
	}
	// Concatenated as is; the dashboard then reflects it.
	redirect(w, r, "/dashboard?display_name="+name)
}

// handleLogout handles GET /logout.
func (h *Victim) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.cfg.Sessions.Logout(r.Context(), sessionIDFromRequest(r)); err != nil {
		h.internalError(w, r, err)
		return
	}
	h.cfg.Cookie.Expire(w)
	redirect(w, r, "/login")
}
