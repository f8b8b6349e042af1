// internal/app/features/members/manage.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func userIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleDelete handles DELETE /api/admin/users/{id}. The user is removed
// from its employee's referrals and its mobile number is released.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Registration.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("delete user failed", zap.Error(err), zap.String("id", id.Hex()))
		respond.ServerError(w)
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actorID, id)
	respond.Message(w, http.StatusOK, "User deleted successfully")
}

type paymentRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// HandlePaymentStatus handles PUT /api/admin/users/{id}/payment and returns
// the updated user.
func (h *Handler) HandlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.PaymentStatus.IsValid() {
		respond.Invalid(w, "Validation failed", []string{"Payment status must be pending, successful or rejected"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("update payment status failed", zap.Error(err), zap.String("id", id.Hex()))
		respond.ServerError(w)
		return
	}

	h.AuditLog.PaymentStatusChanged(ctx, r, actorID, id, req.PaymentStatus)
	respond.JSON(w, http.StatusOK, u)
}
