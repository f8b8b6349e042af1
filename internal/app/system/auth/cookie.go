package auth

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is the cookie carrying the credential.
const DefaultCookieName = "token"

// CookieConfig controls how the credential cookie is written.
//
// In production (Secure=true) the cookie is Secure with SameSite=None so the
// separately hosted front end can send it cross-site. In development over
// plain http it is SameSite=Lax.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c CookieConfig) base() *http.Cookie {
	ck := &http.Cookie{
		Name:     c.name(),
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

// Set writes the credential cookie.
func (c CookieConfig) Set(w http.ResponseWriter, token string) {
	ck := c.base()
	ck.Value = token
	ck.MaxAge = int(c.MaxAge / time.Second)
	http.SetCookie(w, ck)
}

// Clear expires the credential cookie in the browser.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	http.SetCookie(w, ck)
}

// Credential extracts the raw token, preferring the cookie over an
// Authorization: Bearer header.
func (c CookieConfig) Credential(r *http.Request) string {
	if ck, err := r.Cookie(c.name()); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
