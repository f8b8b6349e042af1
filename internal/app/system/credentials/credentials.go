// Package credentials checks a mobile number and password against the
// admins, employees and users collections.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	adminstore "github.com/dalemusser/healthcredit/internal/app/store/admins"
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnknownMobile means no principal has the mobile number.
	ErrUnknownMobile = errors.New("credentials: unknown mobile number")
	// ErrWrongPassword means the password does not match the stored hash.
	ErrWrongPassword = errors.New("credentials: wrong password")
)

// IsRejected reports whether err is a credential mismatch rather than a
// storage failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnknownMobile) || errors.Is(err, ErrWrongPassword)
}

// dummyHash is compared against when the mobile number is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("healthcredit-dummy"), 12)
	return h
})

// Verifier looks a principal up by mobile number and checks its password.
type Verifier struct {
	admins    *adminstore.Store
	employees *employeestore.Store
	users     *userstore.Store
}

func NewVerifier(db *mongo.Database) *Verifier {
	return &Verifier{
		admins:    adminstore.New(db),
		employees: employeestore.New(db),
		users:     userstore.New(db),
	}
}

type candidate struct {
	principal *auth.Principal
	hash      string
}

// Verify returns the principal holding mobile when password matches. The
// collections are searched admins, employees, users; the first match wins.
// With ErrWrongPassword the matched principal is still returned so the
// caller can record which account was targeted; it must not be signed in.
func (v *Verifier) Verify(ctx context.Context, mobile, password string) (*auth.Principal, error) {
	mobile = normalize.Mobile(mobile)

	c, err := v.find(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if c == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrUnknownMobile
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(password)); err != nil {
		return c.principal, ErrWrongPassword
	}
	c.principal.BackfillRole(c.principal.Kind())
	return c.principal, nil
}

func (v *Verifier) find(ctx context.Context, mobile string) (*candidate, error) {
	a, err := v.admins.GetByMobile(ctx, mobile)
	if err == nil {
		hash := a.PasswordHash
		a.PasswordHash = ""
		return &candidate{principal: auth.AdminPrincipal(a), hash: hash}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	e, err := v.employees.GetByMobile(ctx, mobile)
	if err == nil {
		hash := e.PasswordHash
		e.PasswordHash = ""
		return &candidate{principal: auth.EmployeePrincipal(e), hash: hash}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup employee: %w", err)
	}

	u, err := v.users.GetByMobile(ctx, mobile)
	if err == nil {
		hash := u.PasswordHash
		u.PasswordHash = ""
		return &candidate{principal: auth.UserPrincipal(u), hash: hash}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return nil, nil
}
