package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/credentials"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type loginRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

type loginResponse struct {
	User auth.Summary `json:"user"`
}

// HandleLogin handles POST /api/auth/login.
//
// On success it sets the token cookie and returns {"user": {...}}. Unknown
// mobile numbers and wrong passwords get the same 400 "Invalid credentials".
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	mobile := normalize.Mobile(req.MobileNumber)

	var problems []string
	if !normalize.IsTenDigitMobile(mobile) {
		problems = append(problems, "Please provide a valid 10-digit mobile number")
	}
	if len(req.Password) < registration.MinPasswordLength {
		problems = append(problems, "Password must be at least 6 characters")
	}
	if len(problems) > 0 {
		respond.Invalid(w, "Validation failed", problems)
		return
	}

	/*── rate limit by client IP and mobile number ─────────────────────────*/

	if h.Limiter != nil {
		allowed, reason, err := h.Limiter.Check(r, mobile)
		if err != nil {
			// A limiter outage does not block sign-in.
			h.Log.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, mobile)
			respond.Message(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	/*── verify credentials ───────────────────────────────────────────────*/

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Verifier.Verify(ctx, mobile, req.Password)
	switch {
	case err == nil:
	case credentials.IsRejected(err):
		if p != nil {
			h.AuditLog.LoginFailedWrongPassword(ctx, r, p.ID(), p.Kind(), mobile)
		} else {
			h.AuditLog.LoginFailedUnknownMobile(ctx, r, mobile)
		}
		respond.Message(w, http.StatusBadRequest, "Invalid credentials")
		return
	default:
		h.Log.Error("login lookup failed", zap.Error(err))
		respond.ServerError(w)
		return
	}

	token, err := h.Resolver.Tokens().Issue(p.ID().Hex(), p.Kind())
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	h.Resolver.Cookies().Set(w, token)

	if h.Limiter != nil {
		if err := h.Limiter.ResetMobile(ctx, mobile); err != nil {
			h.Log.Warn("reset login rate limit failed", zap.Error(err))
		}
	}
	h.AuditLog.LoginSuccess(ctx, r, p.ID(), p.Kind(), mobile)

	respond.JSON(w, http.StatusOK, loginResponse{User: p.Summary()})
}
