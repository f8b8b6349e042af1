package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password given to every fixture principal.
const TestPassword = "secret123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) hash(password string) string {
	f.t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func (f *Fixtures) claim(ctx context.Context, mobile string, role models.Role, owner primitive.ObjectID) {
	f.t.Helper()
	_, err := f.db.Collection("mobile_numbers").InsertOne(ctx, models.MobileClaim{
		MobileNumber: mobile,
		Role:         role,
		OwnerID:      owner,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to claim mobile %s: %v", mobile, err)
	}
}

// CreateAdmin creates an admin whose password is TestPassword.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, mobile string) models.Admin {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Admin{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		MobileNumber: mobile,
		PasswordHash: f.hash(TestPassword),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	f.claim(ctx, mobile, models.RoleAdmin, a.ID)
	return a
}

// CreateEmployee creates an employee with the given referral code whose
// password is TestPassword.
func (f *Fixtures) CreateEmployee(ctx context.Context, name, mobile, employeeID string) models.Employee {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Employee{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		MobileNumber: mobile,
		PasswordHash: f.hash(TestPassword),
		EmployeeID:   employeeID,
		Role:         models.RoleEmployee,
		Referrals:    []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("employees").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test employee: %v", err)
	}
	f.claim(ctx, mobile, models.RoleEmployee, e.ID)
	return e
}

// CreateUser creates a user referred by the employee with employeeID, links
// it into that employee's referrals, and sets the password to TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, mobile, employeeID, userID string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		FatherName:    "Father of " + fullName,
		ProfileImage:  "data:image/png;base64,iVBORw0KGgo=",
		MobileNumber:  mobile,
		PasswordHash:  f.hash(TestPassword),
		EmployeeID:    employeeID,
		UserID:        userID,
		StartDate:     now,
		EndDate:       now.Add(models.DefaultMembershipValidity),
		Role:          models.RoleUser,
		PaymentStatus: models.PaymentPending,
		PaymentAmount: models.DefaultPaymentAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	f.claim(ctx, mobile, models.RoleUser, u.ID)

	_, err := f.db.Collection("employees").UpdateOne(ctx,
		bson.M{"employee_id": employeeID},
		bson.M{"$addToSet": bson.M{"referrals": u.ID}},
	)
	if err != nil {
		f.t.Fatalf("failed to link test user to employee: %v", err)
	}
	return u
}

// CreateLegacyEmployee inserts an employee document without a role field and
// without a mobile claim, the shape of records written before either existed.
func (f *Fixtures) CreateLegacyEmployee(ctx context.Context, name, mobile, employeeID string) primitive.ObjectID {
	f.t.Helper()

	id := primitive.NewObjectID()
	_, err := f.db.Collection("employees").InsertOne(ctx, bson.M{
		"_id":           id,
		"name":          name,
		"mobile_number": mobile,
		"password_hash": f.hash(TestPassword),
		"employee_id":   employeeID,
		"referrals":     bson.A{},
		"created_at":    time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to create legacy employee: %v", err)
	}
	return id
}
