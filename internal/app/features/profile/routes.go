// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts /api/users. The membership lookup is public; the rest is
// for signed-in users only.
func Routes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Get("/profile/{userId}", h.ServePublicProfile)

	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleUser))
		pr.Get("/me", h.ServeMe)
		pr.Put("/profile", h.HandleUpdateProfile)
	})
	return r
}
