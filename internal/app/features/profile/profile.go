// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type updateRequest struct {
	FullName     string `json:"fullName"`
	FatherName   string `json:"fatherName"`
	MobileNumber string `json:"mobileNumber"`
	ProfileImage string `json:"profileImage"`
}

// ServePublicProfile handles GET /api/users/profile/{userId}. Anyone holding
// a membership number can view the card it belongs to.
func (h *Handler) ServePublicProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUserID(ctx, chi.URLParam(r, "userId"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("public profile lookup failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// ServeMe handles GET /api/users/me. The record is the one the resolver
// loaded for this request.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := authz.User(r)
	if !ok {
		respond.Message(w, http.StatusForbidden, "Access denied.")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// HandleUpdateProfile handles PUT /api/users/profile and answers with the
// updated user. Empty fields are left unchanged; a new mobile number must not
// belong to any other account.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	me, ok := authz.User(r)
	if !ok {
		respond.Message(w, http.StatusForbidden, "Access denied.")
		return
	}

	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Registration.UpdateUserProfile(ctx, me.ID, userstore.ProfileUpdate{
		FullName:     req.FullName,
		FatherName:   req.FatherName,
		MobileNumber: req.MobileNumber,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		var verr *registration.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Invalid(w, "Validation failed", verr.Problems)
		case errors.Is(err, registration.ErrMobileTaken):
			respond.Message(w, http.StatusBadRequest, "Mobile number already exists")
		case errors.Is(err, registration.ErrNotFound):
			respond.Message(w, http.StatusNotFound, "User not found")
		default:
			h.Log.Error("profile update failed", zap.Error(err), zap.String("user_id", me.ID.Hex()))
			respond.ServerError(w)
		}
		return
	}

	h.AuditLog.ProfileUpdated(ctx, r, me.ID, updated.MobileNumber != me.MobileNumber)
	respond.JSON(w, http.StatusOK, updated)
}
