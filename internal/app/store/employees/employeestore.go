package employeestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
	"github.com/dalemusser/healthcredit/internal/app/system/search"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the employees collection name.
const Collection = "employees"

var (
	// ErrDuplicateMobile is returned when the mobile number index rejects an insert.
	ErrDuplicateMobile = errors.New("an employee with this mobile number already exists")
	// ErrDuplicateEmployeeID is returned when the employee_id index rejects an insert.
	ErrDuplicateEmployeeID = errors.New("an employee with this employee ID already exists")
	errNameRequired        = errors.New("employee name is required")
	errEmployeeIDRequired  = errors.New("employee ID is required")
	errPasswordMissing     = errors.New("employee password hash is required")
)

var withoutPassword = bson.M{"password_hash": 0}

// SortFields maps list sortBy names to stored fields.
var SortFields = map[string]string{
	"createdAt":  "created_at",
	"name":       "name_ci",
	"employeeId": "employee_id",
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// FormatEmployeeID renders sequence n as EMP001, EMP002, ... EMP1000.
func FormatEmployeeID(n int64) string {
	return fmt.Sprintf("%s%03d", models.EmployeeIDPrefix, n)
}

// ParseEmployeeID returns the numeric suffix of an EMPnnn code.
func ParseEmployeeID(code string) (int64, bool) {
	code = normalize.Code(code)
	if !strings.HasPrefix(code, models.EmployeeIDPrefix) {
		return 0, false
	}
	digits := strings.TrimPrefix(code, models.EmployeeIDPrefix)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetByID loads an employee without the password hash.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	var e models.Employee
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByMobile loads an employee including the password hash, for login.
func (s *Store) GetByMobile(ctx context.Context, mobile string) (*models.Employee, error) {
	var e models.Employee
	if err := s.c.FindOne(ctx, bson.M{"mobile_number": normalize.Mobile(mobile)}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByEmployeeID loads an employee by referral code, without the password hash.
func (s *Store) GetByEmployeeID(ctx context.Context, code string) (*models.Employee, error) {
	var e models.Employee
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"employee_id": normalize.Code(code)}, opts).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new employee. e.ID is kept when already set.
func (s *Store) Create(ctx context.Context, e models.Employee) (models.Employee, error) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.Name = normalize.Name(e.Name)
	e.NameCI = text.Fold(e.Name)
	e.MobileNumber = normalize.Mobile(e.MobileNumber)
	e.EmployeeID = normalize.Code(e.EmployeeID)
	e.Role = models.RoleEmployee
	if e.Referrals == nil {
		e.Referrals = []primitive.ObjectID{}
	}

	if e.Name == "" {
		return models.Employee{}, errNameRequired
	}
	if e.EmployeeID == "" {
		return models.Employee{}, errEmployeeIDRequired
	}
	if e.PasswordHash == "" {
		return models.Employee{}, errPasswordMissing
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "employee_id") {
				return models.Employee{}, ErrDuplicateEmployeeID
			}
			return models.Employee{}, ErrDuplicateMobile
		}
		return models.Employee{}, err
	}
	e.PasswordHash = ""
	return e, nil
}

// AddReferral records userID as referred by the employee with code.
// Returns mongo.ErrNoDocuments if no employee has the code.
func (s *Store) AddReferral(ctx context.Context, code string, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"employee_id": normalize.Code(code)},
		bson.M{
			"$addToSet": bson.M{"referrals": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveReferral drops userID from the referrals of the employee with code.
// A missing employee is not an error.
func (s *Store) RemoveReferral(ctx context.Context, code string, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"employee_id": normalize.Code(code)},
		bson.M{
			"$pull": bson.M{"referrals": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// Delete removes an employee. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of employees.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountActive returns the number of employees not marked inactive. Records
// without a status count as active.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": bson.M{"$ne": models.EmployeeInactive}})
}

// ListQuery selects a page of employees.
type ListQuery struct {
	Search string
	Page   paging.Page
	Sort   paging.Sort
}

// List returns one page of employees matching q.Search on name, employee ID
// or mobile number, plus the total match count.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Employee, int64, error) {
	filter := search.Filter(q.Search, "name", "employee_id", "mobile_number")
	if q.Sort.Field == "" {
		q.Sort = paging.Sort{Field: "created_at", Order: -1}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := q.Page.Apply(options.Find()).
		SetSort(q.Sort.Doc()).
		SetProjection(withoutPassword)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Employee{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ReferralCount is one row of the top-referrers ranking.
type ReferralCount struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	EmployeeID    string             `bson:"employee_id" json:"employeeId"`
	ReferralCount int                `bson:"referral_count" json:"referralCount"`
}

// TopByReferrals returns the n employees with the most referrals.
func (s *Store) TopByReferrals(ctx context.Context, n int) ([]ReferralCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"name":        1,
			"employee_id": 1,
			"referral_count": bson.M{"$size": bson.M{
				"$ifNull": bson.A{"$referrals", bson.A{}},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "referral_count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: n}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []ReferralCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
