// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current principal's role, display name, ObjectID, and a
// found flag. With no principal attached it returns "", "", NilObjectID, false.
func UserCtx(r *http.Request) (role models.Role, name string, id primitive.ObjectID, ok bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	return p.Role(), p.Name(), p.ID(), true
}

// HasAnyRole reports whether the current principal holds one of roles.
// Returns false when no principal is attached.
func HasAnyRole(r *http.Request, roles ...models.Role) bool {
	role, _, _, ok := UserCtx(r)
	return ok && auth.Allowed(role, roles...)
}

// IsAdmin reports whether the current principal is an admin.
func IsAdmin(r *http.Request) bool { return HasAnyRole(r, models.RoleAdmin) }

// Admin returns the admin record behind the current principal.
func Admin(r *http.Request) (*models.Admin, bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, false
	}
	return p.Admin()
}

// Employee returns the employee record behind the current principal.
func Employee(r *http.Request) (*models.Employee, bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, false
	}
	return p.Employee()
}

// User returns the user record behind the current principal.
func User(r *http.Request) (*models.User, bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, false
	}
	return p.User()
}
