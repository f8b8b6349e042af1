package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the admins collection name.
const Collection = "admins"

var (
	// ErrDuplicateMobile is returned when the mobile number index rejects an insert.
	ErrDuplicateMobile = errors.New("an admin with this mobile number already exists")
	errNameRequired    = errors.New("admin name is required")
	errPasswordMissing = errors.New("admin password hash is required")
)

var withoutPassword = bson.M{"password_hash": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// GetByID loads an admin without the password hash.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByMobile loads an admin including the password hash, for login.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByMobile(ctx context.Context, mobile string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"mobile_number": normalize.Mobile(mobile)}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin. a.ID is kept when already set so callers can
// claim the mobile number for the id before inserting.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Name = normalize.Name(a.Name)
	a.NameCI = text.Fold(a.Name)
	a.MobileNumber = normalize.Mobile(a.MobileNumber)
	a.Role = models.RoleAdmin

	if a.Name == "" {
		return models.Admin{}, errNameRequired
	}
	if a.PasswordHash == "" {
		return models.Admin{}, errPasswordMissing
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateMobile
		}
		return models.Admin{}, err
	}
	a.PasswordHash = ""
	return a, nil
}

// Delete removes an admin. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of admins.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
