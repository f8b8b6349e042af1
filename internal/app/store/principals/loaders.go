// Package principalstore loads authenticated principals for the resolver,
// one loader per role, each bound to its own collection.
package principalstore

import (
	"context"
	"errors"

	adminstore "github.com/dalemusser/healthcredit/internal/app/store/admins"
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewLoaders returns the loader table for db. Every load runs under the
// Short timeout and never reads the password hash.
func NewLoaders(db *mongo.Database) auth.Loaders {
	admins := adminstore.New(db)
	employees := employeestore.New(db)
	users := userstore.New(db)

	return auth.Loaders{
		Admin: func(ctx context.Context, id primitive.ObjectID) (*auth.Principal, error) {
			ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
			defer cancel()
			a, err := admins.GetByID(ctx, id)
			if err != nil {
				return nil, notFound(err)
			}
			return auth.AdminPrincipal(a), nil
		},
		Employee: func(ctx context.Context, id primitive.ObjectID) (*auth.Principal, error) {
			ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
			defer cancel()
			e, err := employees.GetByID(ctx, id)
			if err != nil {
				return nil, notFound(err)
			}
			return auth.EmployeePrincipal(e), nil
		},
		User: func(ctx context.Context, id primitive.ObjectID) (*auth.Principal, error) {
			ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
			defer cancel()
			u, err := users.GetByID(ctx, id)
			if err != nil {
				return nil, notFound(err)
			}
			return auth.UserPrincipal(u), nil
		},
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.ErrPrincipalNotFound
	}
	return err
}
