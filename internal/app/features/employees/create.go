// internal/app/features/employees/create.go
package employees

import (
	"context"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/features/shared"
	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
)

type createRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	EmployeeID   string `json:"employeeId"`
}

// HandleCreate handles POST /api/admin/employees. employeeId is optional;
// when omitted the next EMPnnn code is generated.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	emp, err := h.Registration.RegisterEmployee(ctx, registration.EmployeeInput{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
		EmployeeID:   req.EmployeeID,
	})
	if err != nil {
		shared.WriteRegistrationError(w, h.Log, err, normalize.Mobile(req.MobileNumber))
		return
	}

	h.AuditLog.EmployeeCreated(ctx, r, actorID, emp.ID, emp.EmployeeID)
	respond.JSON(w, http.StatusCreated, emp)
}
