// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// EmployeeRoutes wires the employee dashboard under /api/employees.
func EmployeeRoutes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleEmployee))
		pr.Get("/dashboard", h.ServeEmployeeDashboard)
		pr.Get("/referrals", h.ServeReferrals)
	})
	return r
}

// AdminRoutes wires the analytics dashboard. Mounted at /api/admin/dashboard.
func AdminRoutes(h *Handler, rv *auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(rv.Authenticate)
		pr.Use(auth.Authorize(models.RoleAdmin))
		pr.Get("/", h.ServeAdminDashboard)
	})
	return r
}
