package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type referralEmployee struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
}

type referralResponse struct {
	Valid    bool             `json:"valid"`
	Employee referralEmployee `json:"employee"`
}

// ServeReferral handles GET /api/auth/referral/{employeeId}, used by the
// registration form to validate a referral link.
func (h *Handler) ServeReferral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Employees.GetByEmployeeID(ctx, chi.URLParam(r, "employeeId"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Invalid referral link")
		return
	}
	if err != nil {
		h.Log.Error("referral lookup failed", zap.Error(err))
		respond.ServerError(w)
		return
	}

	respond.JSON(w, http.StatusOK, referralResponse{
		Valid:    true,
		Employee: referralEmployee{Name: e.Name, EmployeeID: e.EmployeeID},
	})
}

// ServePaymentSettings handles GET /api/auth/payment-settings, the QR code
// and fee shown to registering users.
func (h *Handler) ServePaymentSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Settings.GetActive(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Payment settings not configured")
		return
	}
	if err != nil {
		h.Log.Error("payment settings lookup failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, ps)
}
