// internal/app/features/dashboard/employee.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/authz"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.uber.org/zap"
)

type employeeSummary struct {
	Name           string `json:"name"`
	EmployeeID     string `json:"employeeId"`
	TotalReferrals int    `json:"totalReferrals"`
}

type employeeDashboard struct {
	Employee  employeeSummary `json:"employee"`
	Referrals []models.User   `json:"referrals"`
}

// referrals loads the users the signed-in employee referred. ok is false
// when a response has already been written.
func (h *Handler) referrals(w http.ResponseWriter, r *http.Request) (*models.Employee, []models.User, bool) {
	emp, ok := authz.Employee(r)
	if !ok {
		respond.Message(w, http.StatusForbidden, "Access denied.")
		return nil, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.ListByIDs(ctx, emp.Referrals)
	if err != nil {
		h.Log.Error("load referrals failed", zap.Error(err), zap.String("employee_id", emp.EmployeeID))
		respond.ServerError(w)
		return nil, nil, false
	}
	return emp, users, true
}

// ServeEmployeeDashboard handles GET /api/employees/dashboard.
func (h *Handler) ServeEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	emp, users, ok := h.referrals(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, employeeDashboard{
		Employee: employeeSummary{
			Name:           emp.Name,
			EmployeeID:     emp.EmployeeID,
			TotalReferrals: len(emp.Referrals),
		},
		Referrals: users,
	})
}

// ServeReferrals handles GET /api/employees/referrals and returns the bare
// array of referred users.
func (h *Handler) ServeReferrals(w http.ResponseWriter, r *http.Request) {
	_, users, ok := h.referrals(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, users)
}
