package auth

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// WithPrincipal returns a copy of r carrying p.
func WithPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, p))
}

// CurrentPrincipal returns the principal attached by the resolver.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}
