package userstore

import (
	"context"
	"errors"
	"fmt"
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

// Collection is the users collection name.
const Collection = "users"

var (
	// ErrDuplicateMobile is returned when the mobile number index rejects a write.
	ErrDuplicateMobile = errors.New("a user with this mobile number already exists")
	// ErrDuplicateUserID is returned when the user_id index rejects an insert.
	ErrDuplicateUserID = errors.New("a user with this user ID already exists")
	errBadPayment      = errors.New(`payment status must be "pending"|"successful"|"rejected"`)
	errMissingField    = errors.New("full name, father name, employee ID, profile image and user ID are required")
	errPasswordMissing = errors.New("user password hash is required")
)

var withoutPassword = bson.M{"password_hash": 0}

// SortFields maps list sortBy names to stored fields.
var SortFields = map[string]string{
	"createdAt":     "created_at",
	"fullName":      "full_name_ci",
	"userId":        "user_id",
	"employeeId":    "employee_id",
	"paymentStatus": "payment_status",
	"endDate":       "end_date",
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// FormatUserID renders sequence n as the public membership number HC00000001.
func FormatUserID(n int64) string {
	return fmt.Sprintf("%s%08d", models.UserIDPrefix, n)
}

// GetByID loads a user without the password hash.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByMobile loads a user including the password hash, for login.
func (s *Store) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"mobile_number": normalize.Mobile(mobile)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUserID loads a user by public membership number, without the password hash.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"user_id": normalize.Code(userID)}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Membership dates default to now and
// now+validity; payment status defaults to pending.
func (s *Store) Create(ctx context.Context, u models.User, validity time.Duration) (models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.FatherName = normalize.Name(u.FatherName)
	u.MobileNumber = normalize.Mobile(u.MobileNumber)
	u.EmployeeID = normalize.Code(u.EmployeeID)
	u.UserID = normalize.Code(u.UserID)
	u.ProfileImage = strings.TrimSpace(u.ProfileImage)
	u.Role = models.RoleUser
	if u.PaymentStatus == "" {
		u.PaymentStatus = models.PaymentPending
	}

	if u.FullName == "" || u.FatherName == "" || u.EmployeeID == "" || u.ProfileImage == "" || u.UserID == "" {
		return models.User{}, errMissingField
	}
	if u.PasswordHash == "" {
		return models.User{}, errPasswordMissing
	}
	if !u.PaymentStatus.IsValid() {
		return models.User{}, errBadPayment
	}

	now := time.Now().UTC()
	if u.StartDate.IsZero() {
		u.StartDate = now
	}
	if u.EndDate.IsZero() {
		if validity <= 0 {
			validity = models.DefaultMembershipValidity
		}
		u.EndDate = u.StartDate.Add(validity)
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "user_id") {
				return models.User{}, ErrDuplicateUserID
			}
			return models.User{}, ErrDuplicateMobile
		}
		return models.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ProfileUpdate holds the self-service editable fields. Empty fields are left unchanged.
type ProfileUpdate struct {
	FullName     string
	FatherName   string
	MobileNumber string
	ProfileImage string
}

// UpdateProfile applies upd and returns the updated user.
// Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if v := normalize.Name(upd.FullName); v != "" {
		set["full_name"] = v
		set["full_name_ci"] = text.Fold(v)
	}
	if v := normalize.Name(upd.FatherName); v != "" {
		set["father_name"] = v
	}
	if v := normalize.Mobile(upd.MobileNumber); v != "" {
		set["mobile_number"] = v
	}
	if v := strings.TrimSpace(upd.ProfileImage); v != "" {
		set["profile_image"] = v
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateMobile
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePaymentStatus sets the payment status and returns the updated user.
// Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.User, error) {
	if !status.IsValid() {
		return nil, errBadPayment
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now().UTC()}},
		opts,
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountSince returns the number of users created at or after t.
func (s *Store) CountSince(ctx context.Context, t time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": t}})
}

// CountByEmployee returns the number of users referred by the employee with code.
func (s *Store) CountByEmployee(ctx context.Context, code string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"employee_id": normalize.Code(code)})
}

// ListByIDs returns the users with the given ids, newest first.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(withoutPassword)
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListQuery selects a page of users.
type ListQuery struct {
	Search string
	Page   paging.Page
	Sort   paging.Sort
}

// List returns one page of users plus the total match count. A numeric
// search matches mobile number prefixes only; anything else matches name,
// membership number, referral code or mobile number.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.User, int64, error) {
	var filter bson.M
	if search.LooksLikeMobile(q.Search) {
		filter = bson.M{"mobile_number": primitive.Regex{Pattern: "^" + strings.TrimSpace(q.Search)}}
	} else {
		filter = search.Filter(q.Search, "full_name", "user_id", "employee_id", "mobile_number")
	}
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

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MonthCount is the number of registrations in one calendar month (UTC).
type MonthCount struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

// MonthlyRegistrations returns registration counts for the most recent
// months that have any, newest first, at most limit rows.
func (s *Store) MonthlyRegistrations(ctx context.Context, limit int) ([]MonthCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []MonthCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
