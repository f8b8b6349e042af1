// internal/domain/models/mobileclaim.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MobileClaim reserves a mobile number for exactly one principal across the
// admins, employees and users collections. The number itself is the _id, so
// the collection's primary key is the uniqueness constraint.
type MobileClaim struct {
	MobileNumber string             `bson:"_id"`
	Role         Role               `bson:"role"`
	OwnerID      primitive.ObjectID `bson:"owner_id"`
	CreatedAt    time.Time          `bson:"created_at"`
}
