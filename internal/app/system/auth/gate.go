package auth

import (
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/domain/models"
)

// Allowed reports whether role is in allowed. Roles carry no hierarchy.
func Allowed(role models.Role, allowed ...models.Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// Authorize admits requests whose principal holds one of the allowed roles
// and answers 403 otherwise. With no roles listed nobody is admitted.
//
// It must be mounted behind Resolver.Authenticate. A request reaching it
// without a principal is a wiring bug and panics.
func Authorize(allowed ...models.Role) func(http.Handler) http.Handler {
	roles := append([]models.Role(nil), allowed...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentPrincipal(r)
			if !ok {
				panic("auth.Authorize: no principal on request; mount Resolver.Authenticate first")
			}
			if !Allowed(p.Role(), roles...) {
				respond.Message(w, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
