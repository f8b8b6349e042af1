// internal/app/store/paymentsettings/paymentsettingsstore.go
package paymentsettingsstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the payment settings collection name.
const Collection = "payment_settings"

// ErrNegativeAmount is returned by Update for amounts below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Store provides access to the payment_settings collection. At most one
// document is active at a time.
type Store struct {
	c             *mongo.Collection
	defaultAmount float64
}

// New creates a payment settings store. defaultAmount seeds a settings
// document created on first admin read; zero means models.DefaultPaymentAmount.
func New(db *mongo.Database, defaultAmount float64) *Store {
	if defaultAmount <= 0 {
		defaultAmount = models.DefaultPaymentAmount
	}
	return &Store{c: db.Collection(Collection), defaultAmount: defaultAmount}
}

// DefaultAmount is the fee used when no settings document exists.
func (s *Store) DefaultAmount() float64 { return s.defaultAmount }

// GetActive returns the active settings. Returns mongo.ErrNoDocuments when
// none have been configured.
func (s *Store) GetActive(ctx context.Context) (*models.PaymentSettings, error) {
	var ps models.PaymentSettings
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if err := s.c.FindOne(ctx, bson.M{"is_active": true}, opts).Decode(&ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// GetOrCreateActive returns the active settings, creating an empty one with
// the default amount when none exist.
func (s *Store) GetOrCreateActive(ctx context.Context) (*models.PaymentSettings, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var ps models.PaymentSettings
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"is_active": true},
		bson.M{"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"qr_code_image": "",
			"amount":        s.defaultAmount,
			"created_at":    now,
			"updated_at":    now,
		}},
		opts,
	).Decode(&ps)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// Update holds the admin-editable fields. Nil fields are left unchanged.
type Update struct {
	QRCodeImage *string
	Amount      *float64
}

// Update applies upd to the active settings, creating them if needed, and
// returns the result. Empty QR code strings and zero amounts leave the stored
// value alone.
func (s *Store) Update(ctx context.Context, upd Update) (*models.PaymentSettings, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	onInsert := bson.M{
		"_id":        primitive.NewObjectID(),
		"created_at": now,
	}

	if upd.QRCodeImage != nil && strings.TrimSpace(*upd.QRCodeImage) != "" {
		set["qr_code_image"] = strings.TrimSpace(*upd.QRCodeImage)
	} else {
		onInsert["qr_code_image"] = ""
	}
	if upd.Amount != nil && *upd.Amount != 0 {
		if *upd.Amount < 0 {
			return nil, ErrNegativeAmount
		}
		set["amount"] = *upd.Amount
	} else {
		onInsert["amount"] = s.defaultAmount
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var ps models.PaymentSettings
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"is_active": true},
		bson.M{"$set": set, "$setOnInsert": onInsert},
		opts,
	).Decode(&ps)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}
