// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Put("/{id}/payment", h.HandlePaymentStatus)
	})

	return r
}
