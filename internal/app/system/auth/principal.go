package auth

import (
	"encoding/json"

	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the identity attached to a request after its credential has
// been verified. It holds exactly one of an admin, employee or user record,
// selected by Kind. Build one with AdminPrincipal, EmployeePrincipal or
// UserPrincipal.
type Principal struct {
	kind     models.Role
	admin    *models.Admin
	employee *models.Employee
	user     *models.User
}

func AdminPrincipal(a *models.Admin) *Principal {
	return &Principal{kind: models.RoleAdmin, admin: a}
}

func EmployeePrincipal(e *models.Employee) *Principal {
	return &Principal{kind: models.RoleEmployee, employee: e}
}

func UserPrincipal(u *models.User) *Principal {
	return &Principal{kind: models.RoleUser, user: u}
}

// Kind is the collection the principal was loaded from.
func (p *Principal) Kind() models.Role { return p.kind }

// Admin returns the admin record when Kind is RoleAdmin.
func (p *Principal) Admin() (*models.Admin, bool) { return p.admin, p.admin != nil }

// Employee returns the employee record when Kind is RoleEmployee.
func (p *Principal) Employee() (*models.Employee, bool) { return p.employee, p.employee != nil }

// User returns the user record when Kind is RoleUser.
func (p *Principal) User() (*models.User, bool) { return p.user, p.user != nil }

// Role is the role stored on the record.
func (p *Principal) Role() models.Role {
	switch p.kind {
	case models.RoleAdmin:
		return p.admin.Role
	case models.RoleEmployee:
		return p.employee.Role
	case models.RoleUser:
		return p.user.Role
	}
	return ""
}

func (p *Principal) ID() primitive.ObjectID {
	switch p.kind {
	case models.RoleAdmin:
		return p.admin.ID
	case models.RoleEmployee:
		return p.employee.ID
	case models.RoleUser:
		return p.user.ID
	}
	return primitive.NilObjectID
}

// Name is the display name: Name for admins and employees, FullName for users.
func (p *Principal) Name() string {
	switch p.kind {
	case models.RoleAdmin:
		return p.admin.Name
	case models.RoleEmployee:
		return p.employee.Name
	case models.RoleUser:
		return p.user.FullName
	}
	return ""
}

func (p *Principal) MobileNumber() string {
	switch p.kind {
	case models.RoleAdmin:
		return p.admin.MobileNumber
	case models.RoleEmployee:
		return p.employee.MobileNumber
	case models.RoleUser:
		return p.user.MobileNumber
	}
	return ""
}

// EmployeeID is the employee's own referral code, or the referring
// employee's code for a user. Admins have none.
func (p *Principal) EmployeeID() string {
	switch p.kind {
	case models.RoleEmployee:
		return p.employee.EmployeeID
	case models.RoleUser:
		return p.user.EmployeeID
	}
	return ""
}

// BackfillRole sets the record's role to r when the stored document predates
// the role field or spells r in a different case.
func (p *Principal) BackfillRole(r models.Role) {
	var stored *models.Role
	switch p.kind {
	case models.RoleAdmin:
		stored = &p.admin.Role
	case models.RoleEmployee:
		stored = &p.employee.Role
	case models.RoleUser:
		stored = &p.user.Role
	default:
		return
	}
	if *stored == "" {
		*stored = r
		return
	}
	if canon, ok := models.ParseRole(string(*stored)); ok && canon == r {
		*stored = r
	}
}

// Summary is the compact identity returned by login and /me.
type Summary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	MobileNumber string      `json:"mobileNumber"`
	Role         models.Role `json:"role"`
	EmployeeID   string      `json:"employeeId,omitempty"`
}

func (p *Principal) Summary() Summary {
	return Summary{
		ID:           p.ID().Hex(),
		Name:         p.Name(),
		MobileNumber: p.MobileNumber(),
		Role:         p.Role(),
		EmployeeID:   p.EmployeeID(),
	}
}

// MarshalJSON encodes the underlying record. Password hashes are tagged
// json:"-" on every model and are never loaded in the first place.
func (p *Principal) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case models.RoleAdmin:
		return json.Marshal(p.admin)
	case models.RoleEmployee:
		return json.Marshal(p.employee)
	case models.RoleUser:
		return json.Marshal(p.user)
	}
	return []byte("null"), nil
}
