package handler

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

// HardenedCookieMaxAge matches the hardened session TTL.
const HardenedCookieMaxAge = 30 * time.Minute

// CookiePolicy sets the attributes of the session cookie.
type CookiePolicy struct {
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration // zero: session cookie
}

// VulnerableCookie sets no protective attribute at all.
func VulnerableCookie() CookiePolicy {
	return CookiePolicy{}
}

// HardenedCookie is HttpOnly, SameSite=Strict and expires after maxAge.
// secure should only be false for plain-HTTP local testing.
func HardenedCookie(secure bool, maxAge time.Duration) CookiePolicy {
	if maxAge <= 0 {
		maxAge = HardenedCookieMaxAge
	}
	return CookiePolicy{
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	}
}

// Set writes the session cookie.
func (p CookiePolicy) Set(w http.ResponseWriter, value string) {
	c := p.cookie(value)
	if p.MaxAge > 0 {
		c.MaxAge = int(p.MaxAge / time.Second)
	}
	http.SetCookie(w, c)
}

// Expire clears the session cookie in the browser.
func (p CookiePolicy) Expire(w http.ResponseWriter) {
	c := p.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (p CookiePolicy) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: p.HttpOnly,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
