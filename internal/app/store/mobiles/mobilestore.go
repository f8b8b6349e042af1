// Package mobilestore owns the mobile_numbers registry, the single
// uniqueness constraint for mobile numbers across admins, employees and users.
package mobilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/healthcredit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the registry collection name.
const Collection = "mobile_numbers"

// ErrMobileTaken is returned when another principal already holds the number.
var ErrMobileTaken = errors.New("mobile number already registered")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Claim reserves mobile for owner. The number must already be normalized.
func (s *Store) Claim(ctx context.Context, mobile string, role models.Role, owner primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, models.MobileClaim{
		MobileNumber: mobile,
		Role:         role,
		OwnerID:      owner,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrMobileTaken
		}
		return err
	}
	return nil
}

// Release frees mobile if owner still holds it. Releasing a number held by
// someone else, or not held at all, is a no-op.
func (s *Store) Release(ctx context.Context, mobile string, owner primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": mobile, "owner_id": owner})
	return err
}

// Exists reports whether mobile is claimed.
func (s *Store) Exists(ctx context.Context, mobile string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": mobile}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Get returns the claim on mobile. Returns mongo.ErrNoDocuments if unclaimed.
func (s *Store) Get(ctx context.Context, mobile string) (*models.MobileClaim, error) {
	var mc models.MobileClaim
	if err := s.c.FindOne(ctx, bson.M{"_id": mobile}).Decode(&mc); err != nil {
		return nil, err
	}
	return &mc, nil
}
