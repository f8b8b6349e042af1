// internal/app/features/employees/routes.go
package employees

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
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
