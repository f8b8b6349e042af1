// internal/domain/models/employee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee refers end users into the system. EmployeeID is the human-facing
// referral code (EMP001, EMP002, ...) that users type when registering.
type Employee struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	NameCI       string               `bson:"name_ci" json:"-"`
	MobileNumber string               `bson:"mobile_number" json:"mobileNumber"`
	PasswordHash string               `bson:"password_hash,omitempty" json:"-"`
	EmployeeID   string               `bson:"employee_id" json:"employeeId"`
	Role         Role                 `bson:"role" json:"role"`
	Referrals    []primitive.ObjectID `bson:"referrals" json:"referrals"`
	Status       string               `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// EmployeeInactive marks an employee excluded from the active count.
const EmployeeInactive = "inactive"

// EmployeeIDPrefix prefixes every generated referral code.
const EmployeeIDPrefix = "EMP"
