// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/api/admin/audit" from bootstrap). Admins only.
func Routes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleAdmin))

		pr.Get("/", h.ServeList)
	})

	return r
}
