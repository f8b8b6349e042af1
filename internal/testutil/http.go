package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
)

// AsAdmin attaches a copy of a as the request principal.
func AsAdmin(r *http.Request, a models.Admin) *http.Request {
	return auth.WithPrincipal(r, auth.AdminPrincipal(&a))
}

// AsEmployee attaches a copy of e as the request principal.
func AsEmployee(r *http.Request, e models.Employee) *http.Request {
	return auth.WithPrincipal(r, auth.EmployeePrincipal(&e))
}

// AsUser attaches a copy of u as the request principal.
func AsUser(r *http.Request, u models.User) *http.Request {
	return auth.WithPrincipal(r, auth.UserPrincipal(&u))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		panic(err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

type errorer interface {
	Errorf(string, ...any)
	Fatalf(string, ...any)
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t errorer, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t errorer, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t errorer, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, r.Body.String())
	}
}

// Cookie returns the named cookie set by the response, if any.
func (r *ResponseRecorder) Cookie(name string) (*http.Cookie, bool) {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
