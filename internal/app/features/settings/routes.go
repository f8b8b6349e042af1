// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts /api/admin/payment-settings. All routes require an admin.
func Routes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleAdmin))
		pr.Get("/", h.ServeSettings)
		pr.Put("/", h.HandleSettings)
	})
	return r
}
