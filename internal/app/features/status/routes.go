// internal/app/features/status/routes.go
package status

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin health report at /api/admin/health.
func Routes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleAdmin))
		pr.Get("/", h.Serve)
	})
	return r
}
