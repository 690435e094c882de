package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry("hardened")

	r.ObserveLogin(LoginSuccess)
	r.ObserveLogin(LoginFailure)
	r.ObserveLogin(LoginFailure)
	r.ObserveRejection(RejectMismatch)
	r.SetSessionsActive(3)
	r.ObserveCapture()

	if got := testutil.ToFloat64(r.logins.WithLabelValues(LoginFailure)); got != 2 {
		t.Errorf("failed logins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.sessionRejection.WithLabelValues(RejectMismatch)); got != 1 {
		t.Errorf("mismatch rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.sessionsActive); got != 3 {
		t.Errorf("sessions active = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.captures); got != 1 {
		t.Errorf("captures = %v, want 1", got)
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry

	// None of these should panic.
	r.ObserveLogin(LoginSuccess)
	r.ObserveRejection(RejectExpired)
	r.SetSessionsActive(1)
	r.ObserveCapture()
	r.ObserveRequest("GET", "/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil registry handler status = %d, want 404", rec.Code)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry("vulnerable")
	r.ObserveRequest("GET", "/login", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`sessionlab_http_requests_total{app="vulnerable",method="GET",route="/login",status="200"} 1`,
		"sessionlab_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_Independent(t *testing.T) {
	// Two registries in one process must not collide.
	a := NewRegistry("a")
	b := NewRegistry("b")
	a.ObserveCapture()

	if got := testutil.ToFloat64(b.captures); got != 0 {
		t.Errorf("registry b captures = %v, want 0", got)
	}
}
