// internal/app/features/settings/admin.go
package settings

import (
	"context"
	"errors"
	"net/http"

	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeSettings handles GET /api/admin/payment-settings. The active settings
// are created with the default amount on first read.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Settings.GetOrCreateActive(ctx)
	if err != nil {
		h.Log.Error("load payment settings failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, ps)
}

type updateRequest struct {
	QRCodeImage *string  `json:"qrCodeImage"`
	Amount      *float64 `json:"amount"`
}

// HandleSettings handles PUT /api/admin/payment-settings. Omitted, empty or
// zero fields keep their stored values.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Settings.Update(ctx, paymentsettingsstore.Update{
		QRCodeImage: req.QRCodeImage,
		Amount:      req.Amount,
	})
	if errors.Is(err, paymentsettingsstore.ErrNegativeAmount) {
		respond.Invalid(w, "Validation failed", []string{"Amount must not be negative"})
		return
	}
	if err != nil {
		h.Log.Error("update payment settings failed", zap.Error(err))
		respond.ServerError(w)
		return
	}

	qrChanged := req.QRCodeImage != nil && *req.QRCodeImage != ""
	h.AuditLog.PaymentSettingsUpdated(ctx, r, actorID, ps.Amount, qrChanged)
	respond.JSON(w, http.StatusOK, ps)
}
