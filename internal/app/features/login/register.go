package login

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/features/shared"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type registerRequest struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	FatherName   string `json:"fatherName"`
	EmployeeID   string `json:"employeeId"`
	ProfileImage string `json:"profileImage"`
}

// registeredPrincipal is the "user" block of a registration response.
// Fields that do not apply to the registered role are omitted.
type registeredPrincipal struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name,omitempty"`
	FullName     string             `json:"fullName,omitempty"`
	FatherName   string             `json:"fatherName,omitempty"`
	EmployeeID   string             `json:"employeeId,omitempty"`
	UserID       string             `json:"userId,omitempty"`
	ProfileImage string             `json:"profileImage,omitempty"`
	StartDate    *time.Time         `json:"startDate,omitempty"`
	EndDate      *time.Time         `json:"endDate,omitempty"`
	Role         models.Role        `json:"role"`
}

type registerResponse struct {
	Message string              `json:"message"`
	User    registeredPrincipal `json:"user"`
}

// HandleRegister handles POST /api/auth/register for all three roles.
// Registration does not sign the new principal in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		respond.Invalid(w, "Validation failed", []string{"Valid role is required"})
		return
	}
	if role == models.RoleAdmin && !h.AllowAdminRegistration {
		respond.Message(w, http.StatusForbidden, "Admin registration is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var (
		out  registeredPrincipal
		code string
		err  error
	)
	switch role {
	case models.RoleAdmin:
		var a models.Admin
		a, err = h.Registration.RegisterAdmin(ctx, registration.AdminInput{
			Name:         req.Name,
			MobileNumber: req.MobileNumber,
			Password:     req.Password,
		})
		out = registeredPrincipal{ID: a.ID, Name: a.Name, Role: a.Role}
	case models.RoleEmployee:
		var e models.Employee
		e, err = h.Registration.RegisterEmployee(ctx, registration.EmployeeInput{
			Name:         req.Name,
			MobileNumber: req.MobileNumber,
			Password:     req.Password,
		})
		out = registeredPrincipal{ID: e.ID, Name: e.Name, EmployeeID: e.EmployeeID, Role: e.Role}
		code = e.EmployeeID
	case models.RoleUser:
		var u models.User
		u, err = h.Registration.RegisterUser(ctx, registration.UserInput{
			FullName:     req.FullName,
			FatherName:   req.FatherName,
			MobileNumber: req.MobileNumber,
			Password:     req.Password,
			EmployeeID:   req.EmployeeID,
			ProfileImage: req.ProfileImage,
		})
		out = registeredPrincipal{
			ID:           u.ID,
			FullName:     u.FullName,
			FatherName:   u.FatherName,
			UserID:       u.UserID,
			ProfileImage: u.ProfileImage,
			StartDate:    &u.StartDate,
			EndDate:      &u.EndDate,
			Role:         u.Role,
		}
		code = u.UserID
	}
	if err != nil {
		shared.WriteRegistrationError(w, h.Log, err, normalize.Mobile(req.MobileNumber))
		return
	}

	h.AuditLog.Registered(ctx, r, out.ID, role, code)
	respond.JSON(w, http.StatusCreated, registerResponse{Message: "Registration successful", User: out})
}
