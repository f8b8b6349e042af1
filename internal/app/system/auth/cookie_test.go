package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCredential_Precedence(t *testing.T) {
	cc := CookieConfig{}

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie only", "from-cookie", "", "from-cookie"},
		{"bearer only", "", "Bearer from-header", "from-header"},
		{"lowercase scheme", "", "bearer from-header", "from-header"},
		{"cookie wins", "from-cookie", "Bearer from-header", "from-cookie"},
		{"other scheme ignored", "", "Basic dXNlcjpwYXNz", ""},
		{"empty bearer", "", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := cc.Credential(req); got != tt.want {
				t.Errorf("Credential() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookieConfig_Set(t *testing.T) {
	tests := []struct {
		name     string
		secure   bool
		sameSite http.SameSite
	}{
		{"development", false, http.SameSiteLaxMode},
		{"production", true, http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := CookieConfig{Secure: tt.secure, MaxAge: DefaultTokenTTL}
			rec := httptest.NewRecorder()
			cc.Set(rec, "abc")

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("got %d cookies, want 1", len(cookies))
			}
			c := cookies[0]
			if c.Name != "token" || c.Value != "abc" {
				t.Errorf("cookie = %s=%s", c.Name, c.Value)
			}
			if !c.HttpOnly {
				t.Error("cookie must be http-only")
			}
			if c.Secure != tt.secure {
				t.Errorf("Secure = %v, want %v", c.Secure, tt.secure)
			}
			if c.SameSite != tt.sameSite {
				t.Errorf("SameSite = %v, want %v", c.SameSite, tt.sameSite)
			}
			if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
				t.Errorf("MaxAge = %d", c.MaxAge)
			}
		})
	}
}

func TestCookieConfig_Clear(t *testing.T) {
	cc := CookieConfig{Name: "custom"}
	rec := httptest.NewRecorder()
	cc.Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].Name != "custom" || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Errorf("cookie not cleared: %+v", cookies[0])
	}
}
