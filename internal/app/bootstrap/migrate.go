// internal/app/bootstrap/migrate.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	adminstore "github.com/dalemusser/healthcredit/internal/app/store/admins"
	counterstore "github.com/dalemusser/healthcredit/internal/app/store/counters"
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	mobilestore "github.com/dalemusser/healthcredit/internal/app/store/mobiles"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// principalCollections lists each principal collection with the role its
// records carry.
var principalCollections = []struct {
	name string
	role models.Role
}{
	{adminstore.Collection, models.RoleAdmin},
	{employeestore.Collection, models.RoleEmployee},
	{userstore.Collection, models.RoleUser},
}

// migrate brings records written before roles, mobile claims and counters
// existed up to the current shape. Every step is idempotent.
func migrate(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := backfillRoles(ctx, db, logger); err != nil {
		return fmt.Errorf("backfill roles: %w", err)
	}
	if err := claimMissingMobiles(ctx, db, logger); err != nil {
		return fmt.Errorf("claim mobiles: %w", err)
	}
	if err := seedCounters(ctx, db, logger); err != nil {
		return fmt.Errorf("seed counters: %w", err)
	}
	return nil
}

// backfillRoles sets the role field on records that lack it or spell it in
// a different case or with surrounding spaces.
func backfillRoles(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	for _, pc := range principalCollections {
		stale := bson.M{"$or": bson.A{
			bson.M{"role": bson.M{"$exists": false}},
			bson.M{"role": ""},
			bson.M{"role": nil},
			bson.M{"role": bson.M{
				"$regex":   "^\\s*" + string(pc.role) + "\\s*$",
				"$options": "i",
				"$ne":      pc.role,
			}},
		}}
		res, err := db.Collection(pc.name).UpdateMany(ctx, stale, bson.M{"$set": bson.M{"role": pc.role}})
		if err != nil {
			return fmt.Errorf("%s: %w", pc.name, err)
		}
		if res.ModifiedCount > 0 {
			logger.Info("backfilled missing roles",
				zap.String("collection", pc.name),
				zap.Int64("count", res.ModifiedCount))
		}
	}
	return nil
}

// claimMissingMobiles registers every stored mobile number in the
// mobile_numbers registry. A number already claimed by a different record
// is a pre-existing duplicate; it is logged and left for an operator.
func claimMissingMobiles(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	mobiles := mobilestore.New(db)
	opts := options.Find().SetProjection(bson.M{"_id": 1, "mobile_number": 1})

	for _, pc := range principalCollections {
		cur, err := db.Collection(pc.name).Find(ctx, bson.M{}, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", pc.name, err)
		}

		claimed := 0
		for cur.Next(ctx) {
			var rec struct {
				ID           primitive.ObjectID `bson:"_id"`
				MobileNumber string             `bson:"mobile_number"`
			}
			if err := cur.Decode(&rec); err != nil {
				cur.Close(ctx)
				return fmt.Errorf("%s: decode: %w", pc.name, err)
			}
			if rec.MobileNumber == "" {
				continue
			}

			err := mobiles.Claim(ctx, rec.MobileNumber, pc.role, rec.ID)
			switch {
			case err == nil:
				claimed++
			case errors.Is(err, mobilestore.ErrMobileTaken):
				holder, gerr := mobiles.Get(ctx, rec.MobileNumber)
				if gerr != nil {
					cur.Close(ctx)
					return fmt.Errorf("%s: load claim: %w", pc.name, gerr)
				}
				if holder.OwnerID != rec.ID {
					logger.Warn("mobile number shared by two principals; login resolves to the first",
						zap.String("mobile_number", rec.MobileNumber),
						zap.String("collection", pc.name),
						zap.String("id", rec.ID.Hex()),
						zap.String("claimed_by", holder.OwnerID.Hex()),
						zap.String("claimed_role", string(holder.Role)))
				}
			default:
				cur.Close(ctx)
				return fmt.Errorf("%s: claim: %w", pc.name, err)
			}
		}
		err = cur.Err()
		cur.Close(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", pc.name, err)
		}
		if claimed > 0 {
			logger.Info("registered mobile numbers",
				zap.String("collection", pc.name),
				zap.Int("count", claimed))
		}
	}
	return nil
}

// seedCounters raises each sequence past the highest identifier already
// stored, so generated codes never collide with existing ones.
func seedCounters(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	counters := counterstore.New(db)
	seqs := []struct {
		counter, coll, field, prefix string
	}{
		{counterstore.EmployeeIDs, employeestore.Collection, "employee_id", models.EmployeeIDPrefix},
		{counterstore.UserIDs, userstore.Collection, "user_id", models.UserIDPrefix},
	}

	for _, s := range seqs {
		max, err := maxSuffix(ctx, db.Collection(s.coll), s.field, s.prefix)
		if err != nil {
			return fmt.Errorf("%s: %w", s.coll, err)
		}
		if max == 0 {
			continue
		}
		if err := counters.EnsureAtLeast(ctx, s.counter, max); err != nil {
			return fmt.Errorf("%s: %w", s.counter, err)
		}
		logger.Debug("counter seeded", zap.String("counter", s.counter), zap.Int64("at_least", max))
	}
	return nil
}

// maxSuffix returns the largest numeric suffix among field values that start
// with prefix. Values with non-numeric suffixes are ignored.
func maxSuffix(ctx context.Context, c *mongo.Collection, field, prefix string) (int64, error) {
	filter := bson.M{field: primitive.Regex{Pattern: "^" + prefix + "[0-9]+$"}}
	cur, err := c.Find(ctx, filter, options.Find().SetProjection(bson.M{field: 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var max int64
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return 0, err
		}
		v, _ := doc[field].(string)
		n, err := strconv.ParseInt(strings.TrimPrefix(v, prefix), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, cur.Err()
}
