package login

import (
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleLogout handles POST /api/auth/logout. It always clears the cookie,
// whether or not the request carried a valid token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var (
		subject *primitive.ObjectID
		role    models.Role
	)
	if raw := h.Resolver.Cookies().Credential(r); raw != "" {
		if claims, err := h.Resolver.Tokens().Parse(raw); err == nil {
			if oid, err := primitive.ObjectIDFromHex(claims.ID); err == nil {
				subject = &oid
				role = claims.Role
			}
		}
	}

	h.Resolver.Cookies().Clear(w)
	if subject != nil {
		h.AuditLog.Logout(r.Context(), r, subject, role)
	}
	respond.Message(w, http.StatusOK, "Logged out successfully")
}

// ServeMe handles GET /api/auth/me and returns the signed-in principal's
// stored record without its password hash.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		respond.Coded(w, http.StatusUnauthorized, "Access denied. No token provided.", auth.CodeNoToken)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user": p})
}
