// internal/domain/models/paymentsettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSettings holds the QR code and fee shown to registering users.
// Only one document is active at a time.
type PaymentSettings struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QRCodeImage string             `bson:"qr_code_image" json:"qrCodeImage"`
	Amount      float64            `bson:"amount" json:"amount"`
	IsActive    bool               `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultPaymentAmount is the membership fee used when no settings exist.
const DefaultPaymentAmount = 500
