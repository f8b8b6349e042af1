// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an end customer holding a membership.
//
// Identifiers:
//   - ID: the MongoDB ObjectID (_id)
//   - UserID: the public membership number printed on the card (HC########)
//   - EmployeeID: the referral code of the employee who referred this user
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName      string             `bson:"full_name" json:"fullName"`
	FullNameCI    string             `bson:"full_name_ci" json:"-"`
	FatherName    string             `bson:"father_name" json:"fatherName"`
	ProfileImage  string             `bson:"profile_image" json:"profileImage"`
	MobileNumber  string             `bson:"mobile_number" json:"mobileNumber"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	EmployeeID    string             `bson:"employee_id" json:"employeeId"`
	UserID        string             `bson:"user_id" json:"userId"`
	StartDate     time.Time          `bson:"start_date" json:"startDate"`
	EndDate       time.Time          `bson:"end_date" json:"endDate"`
	Role          Role               `bson:"role" json:"role"`
	PaymentStatus PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	PaymentAmount float64            `bson:"payment_amount" json:"paymentAmount"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserIDPrefix prefixes every generated public membership number.
const UserIDPrefix = "HC"

// DefaultMembershipValidity is how long a membership lasts when the
// deployment does not override it.
const DefaultMembershipValidity = 730 * 24 * time.Hour

// PaymentStatus tracks whether a user's membership fee was received.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentRejected   PaymentStatus = "rejected"
)

// IsValid reports whether p is one of the known payment statuses.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentSuccessful, PaymentRejected:
		return true
	}
	return false
}
