package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/core/service"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/view"
	"github.com/yndnr/sessionlab-go/internal/storage/memory"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

const (
	victimAddr = "10.0.0.1:51000"
	victimUA   = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"
	otherAddr  = "203.0.113.7:40000"
	otherUA    = "curl/8.5.0"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVulnerable(t *testing.T) *Victim {
	t.Helper()
	return newTestVictim(t, false, nil)
}

func newHardened(t *testing.T) *Victim {
	t.Helper()
	return newTestVictim(t, true, service.NewLoginLimiter(3, time.Minute))
}

func newTestVictim(t *testing.T, hardened bool, limiter *service.LoginLimiter) *Victim {
	t.Helper()

	policy := service.VulnerablePolicy()
	mode := service.PasswordPlaintext
	newViews := view.NewRaw
	cookie := VulnerableCookie()
	app, variant := "Vulnerable App", "Vulnerable"
	if hardened {
		policy = service.HardenedPolicy(30 * time.Minute)
		mode = service.PasswordArgon2
		newViews = view.NewEscaped
		cookie = HardenedCookie(true, 30*time.Minute)
		app, variant = "Hardened App", "Hardened"
	}

	views, err := newViews()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	log := discardLogger()
	reg := metric.NewRegistry(policy.Name)
	auth := service.NewAuthService(memory.NewUserStore(nil), mode, log)
	if err := auth.LoadUsers(context.Background(), map[string]string{"alice": "password123"}); err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}

	return NewVictim(VictimConfig{
		App:      app,
		Variant:  variant,
		Sessions: service.NewSessionService(memory.New(), auth, policy, log, reg),
		Limiter:  limiter,
		Views:    views,
		Cookie:   cookie,
		Logger:   log,
		Metrics:  reg,
	})
}

type clientReq struct {
	addr, ua string
	cookie   string
}

var victimClient = clientReq{addr: victimAddr, ua: victimUA}

func (c clientReq) withCookie(v string) clientReq {
	c.cookie = v
	return c
}

func do(h http.Handler, c clientReq, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.RemoteAddr = c.addr
	req.Header.Set("User-Agent", c.ua)
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.cookie})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func credentials(password string) url.Values {
	return url.Values{"username": {"alice"}, "password": {password}}
}

// loginAs logs in and returns the session cookie the server set.
func loginAs(t *testing.T, h http.Handler, c clientReq) *http.Cookie {
	t.Helper()
	rec := do(h, c, http.MethodPost, "/login", credentials("password123"))
	if rec.Code != http.StatusFound {
		t.Fatalf("POST /login status = %d, want 302; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("Location = %q, want /dashboard", loc)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}
	return cookie
}

func TestIndex_RedirectsToLogin(t *testing.T) {
	rec := do(newVulnerable(t), victimClient, http.MethodGet, "/", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("GET / = %d %q, want 302 /login", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginPage(t *testing.T) {
	tests := []struct {
		name       string
		h          func(*testing.T) *Victim
		wantCookie bool
		wantText   string
	}{
		{"vulnerable adopts link session id", newVulnerable, true, "Login (Vulnerable)"},
		{"hardened ignores link session id", newHardened, false, "Login (Hardened)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.h(t), victimClient, http.MethodGet, "/login?session_id=attacker-chosen", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("body missing %q", tt.wantText)
			}

			c := sessionCookie(rec)
			if !tt.wantCookie {
				if c != nil {
					t.Errorf("unexpected Set-Cookie %v", c)
				}
				return
			}
			if c == nil || c.Value != "attacker-chosen" {
				t.Fatalf("cookie = %v, want session_id=attacker-chosen", c)
			}
			if c.HttpOnly || c.Secure || c.SameSite != 0 || c.MaxAge != 0 {
				t.Errorf("vulnerable cookie has protective attributes: %+v", c)
			}
		})
	}
}

func TestVulnerable_SessionFixation(t *testing.T) {
	h := newVulnerable(t)

	c := loginAs(t, h, victimClient.withCookie("attacker-chosen"))
	if c.Value != "attacker-chosen" {
		t.Fatalf("session ID = %q, want the planted one", c.Value)
	}

	// The attacker, from another machine, uses the ID they planted.
	attacker := clientReq{addr: otherAddr, ua: otherUA, cookie: "attacker-chosen"}
	rec := do(h, attacker, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("attacker dashboard status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Welcome, alice!") {
		t.Error("attacker should see alice's dashboard")
	}
}

func TestVulnerable_LoginWithoutCookieGeneratesHexID(t *testing.T) {
	c := loginAs(t, newVulnerable(t), victimClient)
	if len(c.Value) != 16 {
		t.Errorf("len(session ID) = %d, want 16", len(c.Value))
	}
}

func TestHardened_LoginRegeneratesID(t *testing.T) {
	h := newHardened(t)

	c := loginAs(t, h, victimClient.withCookie("attacker-chosen"))
	if c.Value == "attacker-chosen" {
		t.Fatal("hardened login kept the planted session ID")
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie attributes = %+v, want HttpOnly Secure SameSite=Strict", c)
	}
	if c.MaxAge != 1800 {
		t.Errorf("MaxAge = %d, want 1800", c.MaxAge)
	}

	rec := do(h, clientReq{addr: otherAddr, ua: otherUA, cookie: "attacker-chosen"}, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusFound {
		t.Errorf("planted ID should not authenticate, status = %d", rec.Code)
	}
}

func TestLogin_LongUserAgent(t *testing.T) {
	long := clientReq{addr: victimAddr, ua: "Mozilla/5.0 " + strings.Repeat("X", 520)}

	for _, hardened := range []bool{false, true} {
		t.Run(fmt.Sprintf("hardened=%v", hardened), func(t *testing.T) {
			h := newVulnerable(t)
			if hardened {
				h = newHardened(t)
			}

			c := loginAs(t, h, long)

			rec := do(h, long.withCookie(c.Value), http.MethodGet, "/dashboard", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("dashboard status = %d, want 200", rec.Code)
			}
		})
	}
}

func TestLogin_PlantedIDTooLong(t *testing.T) {
	planted := victimClient.withCookie(strings.Repeat("a", domain.MaxSessionIDLength+1))

	rec := do(newVulnerable(t), planted, http.MethodPost, "/login", credentials("password123"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("vulnerable status = %d, want 400", rec.Code)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie should be expired, got %v", c)
	}

	// The hardened app never reuses the cookie, so its length is irrelevant.
	c := loginAs(t, newHardened(t), planted)
	if len(c.Value) > domain.MaxSessionIDLength {
		t.Errorf("hardened session ID has %d characters", len(c.Value))
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	for _, h := range []*Victim{newVulnerable(t), newHardened(t)} {
		rec := do(h, victimClient, http.MethodPost, "/login", credentials("wrong"))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), MsgInvalidCredentials) {
			t.Error("body should carry the error message")
		}
		if c := sessionCookie(rec); c != nil {
			t.Errorf("unexpected Set-Cookie %v", c)
		}
	}
}

func TestHardened_LoginThrottled(t *testing.T) {
	h := newHardened(t)

	for i := 0; i < 3; i++ {
		if rec := do(h, victimClient, http.MethodPost, "/login", credentials("wrong")); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := do(h, victimClient, http.MethodPost, "/login", credentials("password123"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "SL-AUTH-4290" {
		t.Errorf("X-Error-Code = %q, want SL-AUTH-4290", got)
	}
	if !strings.Contains(rec.Body.String(), MsgTooManyAttempts) {
		t.Error("body should explain the throttling")
	}

	// Other clients keep their own budget.
	loginAs(t, h, clientReq{addr: otherAddr, ua: victimUA})
}

func TestDashboard_RequiresSession(t *testing.T) {
	for _, h := range []*Victim{newVulnerable(t), newHardened(t)} {
		for _, path := range []string{"/dashboard", "/search?q=x"} {
			rec := do(h, victimClient.withCookie("unknown"), http.MethodGet, path, nil)
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
				t.Errorf("GET %s = %d %q, want 302 /login", path, rec.Code, rec.Header().Get("Location"))
			}
		}
	}
}

func TestSearch_Reflection(t *testing.T) {
	payload := "<script>alert(document.cookie)</script>"
	target := "/search?" + url.Values{"q": {payload}}.Encode()

	t.Run("vulnerable reflects raw", func(t *testing.T) {
		h := newVulnerable(t)
		c := loginAs(t, h, victimClient)

		rec := do(h, victimClient.withCookie(c.Value), http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "You searched for: "+payload) {
			t.Error("query should be reflected unescaped")
		}
	})

	t.Run("hardened escapes", func(t *testing.T) {
		h := newHardened(t)
		c := loginAs(t, h, victimClient)

		rec := do(h, victimClient.withCookie(c.Value), http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if strings.Contains(body, payload) {
			t.Error("query reflected unescaped")
		}
		if !strings.Contains(body, "&lt;script&gt;") {
			t.Error("escaped query missing")
		}
		if got := rec.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("Cache-Control = %q, want no-store", got)
		}
	})
}

func TestProfile_Redirect(t *testing.T) {
	payload := `<img src=x onerror="alert(1)">`

	t.Run("vulnerable concatenates", func(t *testing.T) {
		h := newVulnerable(t)
		c := loginAs(t, h, victimClient)

		rec := do(h, victimClient.withCookie(c.Value), http.MethodPost, "/profile", url.Values{"display_name": {payload}})
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if got := rec.Header().Get("Location"); !strings.Contains(got, "display_name=<img") {
			t.Errorf("Location = %q, want the raw value appended", got)
		}

		rec = do(h, victimClient.withCookie(c.Value), http.MethodGet, "/dashboard?"+url.Values{"display_name": {payload}}.Encode(), nil)
		if !strings.Contains(rec.Body.String(), "Display name: "+payload) {
			t.Error("display name should be rendered unescaped")
		}
	})

	t.Run("hardened encodes", func(t *testing.T) {
		h := newHardened(t)
		c := loginAs(t, h, victimClient)

		rec := do(h, victimClient.withCookie(c.Value), http.MethodPost, "/profile", url.Values{"display_name": {payload}})
		want := "/dashboard?" + url.Values{"display_name": {payload}}.Encode()
		if got := rec.Header().Get("Location"); got != want {
			t.Errorf("Location = %q, want %q", got, want)
		}

		rec = do(h, victimClient.withCookie(c.Value), http.MethodGet, want, nil)
		if strings.Contains(rec.Body.String(), payload) {
			t.Error("display name rendered unescaped")
		}
	})
}

func TestHardened_ClientMismatchInvalidates(t *testing.T) {
	tests := []struct {
		name  string
		thief clientReq
	}{
		{"different user agent", clientReq{addr: victimAddr, ua: otherUA}},
		{"different ip", clientReq{addr: otherAddr, ua: victimUA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHardened(t)
			c := loginAs(t, h, victimClient)

			rec := do(h, tt.thief.withCookie(c.Value), http.MethodGet, "/dashboard", nil)
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
				t.Fatalf("thief got %d %q, want 302 /login", rec.Code, rec.Header().Get("Location"))
			}
			if expired := sessionCookie(rec); expired == nil || expired.MaxAge >= 0 {
				t.Errorf("cookie should be expired, got %v", expired)
			}

			// The session is gone for its owner too.
			rec = do(h, victimClient.withCookie(c.Value), http.MethodGet, "/dashboard", nil)
			if rec.Code != http.StatusFound {
				t.Errorf("owner status = %d, want 302 after invalidation", rec.Code)
			}
		})
	}
}

func TestVulnerable_StolenCookieWorksAnywhere(t *testing.T) {
	h := newVulnerable(t)
	c := loginAs(t, h, victimClient)

	rec := do(h, clientReq{addr: otherAddr, ua: otherUA, cookie: c.Value}, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	for _, h := range []*Victim{newVulnerable(t), newHardened(t)} {
		c := loginAs(t, h, victimClient)

		rec := do(h, victimClient.withCookie(c.Value), http.MethodGet, "/logout", nil)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Fatalf("logout = %d %q, want 302 /login", rec.Code, rec.Header().Get("Location"))
		}
		expired := sessionCookie(rec)
		if expired == nil || expired.Value != "" || expired.MaxAge >= 0 {
			t.Errorf("cookie should be cleared, got %v", expired)
		}

		rec = do(h, victimClient.withCookie(c.Value), http.MethodGet, "/dashboard", nil)
		if rec.Code != http.StatusFound {
			t.Errorf("dashboard after logout = %d, want 302", rec.Code)
		}
	}
}

func TestLogout_WithoutSession(t *testing.T) {
	rec := do(newVulnerable(t), victimClient, http.MethodGet, "/logout", nil)
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := do(newHardened(t), victimClient, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"ok"`) || !strings.Contains(body, `"app":"Hardened App"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newVulnerable(t)
	loginAs(t, h, victimClient)

	rec := do(h, victimClient, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sessionlab_logins_total") {
		t.Error("metrics output missing login counter")
	}
}
