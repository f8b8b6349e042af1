// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the /api/auth endpoints. Only /me requires a credential.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.Post("/register", h.HandleRegister)
	r.Post("/logout", h.HandleLogout)
	r.Get("/referral/{employeeId}", h.ServeReferral)
	r.Get("/payment-settings", h.ServePaymentSettings)

	r.Group(func(pr chi.Router) {
		pr.Use(h.Resolver.Authenticate)
		pr.Get("/me", h.ServeMe)
	})
	return r
}
