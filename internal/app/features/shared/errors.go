// Package shared holds response helpers used by more than one feature.
package shared

import (
	"errors"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"go.uber.org/zap"
)

// WriteRegistrationError maps a registration.Service error to its HTTP
// response, logging anything that is not a client error.
func WriteRegistrationError(w http.ResponseWriter, log *zap.Logger, err error, mobile string) {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Invalid(w, "Validation failed", verr.Problems)
	case errors.Is(err, registration.ErrMobileTaken):
		respond.Message(w, http.StatusBadRequest, "Mobile number already registered")
	case errors.Is(err, registration.ErrInvalidReferral):
		respond.Message(w, http.StatusBadRequest, "Invalid employee ID")
	case errors.Is(err, registration.ErrDuplicateID):
		respond.Message(w, http.StatusBadRequest, "Mobile number or Employee ID already exists")
	default:
		log.Error("registration failed", zap.String("mobile_number", mobile), zap.Error(err))
		respond.ServerError(w)
	}
}
