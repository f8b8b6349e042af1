// internal/app/features/employees/delete.go
package employees

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/admin/employees/{id}. The employee's
// mobile number is released; users it referred are kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Registration.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, "Employee not found")
			return
		}
		h.Log.Error("delete employee failed", zap.Error(err), zap.String("id", id.Hex()))
		respond.ServerError(w)
		return
	}

	h.AuditLog.EmployeeDeleted(ctx, r, actorID, id)
	respond.Message(w, http.StatusOK, "Employee deleted successfully")
}
