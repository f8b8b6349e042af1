// Package registration creates and removes principals. Every write that
// touches more than one document runs through txn.Run; on deployments
// without transactions the completed steps are undone when a later step fails.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	adminstore "github.com/dalemusser/healthcredit/internal/app/store/admins"
	counterstore "github.com/dalemusser/healthcredit/internal/app/store/counters"
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	mobilestore "github.com/dalemusser/healthcredit/internal/app/store/mobiles"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/txn"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// DefaultBcryptCost is the cost used to hash new passwords.
const DefaultBcryptCost = 12

// maxIDAttempts bounds retries when a generated identifier collides with one
// written before the sequence counters existed.
const maxIDAttempts = 5

var (
	// ErrMobileTaken is returned when any principal already holds the number.
	ErrMobileTaken = mobilestore.ErrMobileTaken
	// ErrInvalidReferral is returned when a user names an employee ID that
	// does not exist.
	ErrInvalidReferral = errors.New("invalid employee ID")
	// ErrNotFound is returned by deletes and updates of missing principals.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when an employee or user identifier is
	// already in use and could not be regenerated.
	ErrDuplicateID = errors.New("identifier already in use")
)

// ValidationError lists every problem found in a registration request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Config tunes the service. Zero values take the defaults.
type Config struct {
	MembershipValidity time.Duration
	BcryptCost         int
}

// Service creates, updates and deletes admins, employees and users.
type Service struct {
	client    *mongo.Client
	admins    *adminstore.Store
	employees *employeestore.Store
	users     *userstore.Store
	mobiles   *mobilestore.Store
	counters  *counterstore.Store
	settings  *paymentsettingsstore.Store
	validity  time.Duration
	cost      int
	log       *zap.Logger

	// run executes a multi-document write; txn.Run outside tests.
	run func(ctx context.Context, fn func(ctx context.Context) error) error
}

// New builds a Service over db. settings supplies the membership fee stamped
// on new users.
func New(db *mongo.Database, settings *paymentsettingsstore.Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.MembershipValidity <= 0 {
		cfg.MembershipValidity = models.DefaultMembershipValidity
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		client:    db.Client(),
		admins:    adminstore.New(db),
		employees: employeestore.New(db),
		users:     userstore.New(db),
		mobiles:   mobilestore.New(db),
		counters:  counterstore.New(db),
		settings:  settings,
		validity:  cfg.MembershipValidity,
		cost:      cfg.BcryptCost,
		log:       logger,
	}
	s.run = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return txn.Run(ctx, s.client, s.log, fn)
	}
	return s
}

/*─────────────────────────────────────────────────────────────────────────────*
| Inputs & validation                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// AdminInput is the data needed to create an admin.
type AdminInput struct {
	Name         string
	MobileNumber string
	Password     string
}

// EmployeeInput is the data needed to create an employee. EmployeeID is
// generated when empty.
type EmployeeInput struct {
	Name         string
	MobileNumber string
	Password     string
	EmployeeID   string
}

// UserInput is the data needed to register a user.
type UserInput struct {
	FullName     string
	FatherName   string
	MobileNumber string
	Password     string
	EmployeeID   string
	ProfileImage string
}

type problems []string

func (p *problems) add(msg string) { *p = append(*p, msg) }

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p}
}

func checkMobile(p *problems, mobile string) {
	if !normalize.IsTenDigitMobile(mobile) {
		p.add("Please provide a valid 10-digit mobile number")
	}
}

func checkPassword(p *problems, pw string) {
	if len(pw) < MinPasswordLength {
		p.add(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
}

func (s *Service) hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// precheckMobile fails fast before the bcrypt work. The claim inside the
// write is what actually enforces uniqueness.
func (s *Service) precheckMobile(ctx context.Context, mobile string) error {
	taken, err := s.mobiles.Exists(ctx, mobile)
	if err != nil {
		return fmt.Errorf("check mobile: %w", err)
	}
	if taken {
		return ErrMobileTaken
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Transactions with compensation                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// undo collects compensating actions for writes done outside a transaction.
type undo struct {
	steps []func(ctx context.Context) error
}

func (u *undo) push(step func(ctx context.Context) error) { u.steps = append(u.steps, step) }

func (s *Service) write(ctx context.Context, op string, fn func(ctx context.Context, u *undo) error) error {
	return s.run(ctx, func(ctx context.Context) error {
		var u undo
		err := fn(ctx, &u)
		if err != nil && !txn.Active(ctx) {
			s.compensate(ctx, op, &u)
		}
		return err
	})
}

func (s *Service) compensate(ctx context.Context, op string, u *undo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	for i := len(u.steps) - 1; i >= 0; i-- {
		if err := u.steps[i](ctx); err != nil {
			s.log.Error("compensating write failed; manual cleanup may be needed",
				zap.String("operation", op), zap.Error(err))
		}
	}
}

func isIDCollision(err error) bool {
	return errors.Is(err, employeestore.ErrDuplicateEmployeeID) || errors.Is(err, userstore.ErrDuplicateUserID)
}

func finalIDErr(err error) error {
	if isIDCollision(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	}
	return err
}

// mapDup turns per-collection mobile index violations into ErrMobileTaken.
func mapDup(err error) error {
	switch {
	case errors.Is(err, adminstore.ErrDuplicateMobile),
		errors.Is(err, employeestore.ErrDuplicateMobile),
		errors.Is(err, userstore.ErrDuplicateMobile):
		return ErrMobileTaken
	}
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Registration                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// RegisterAdmin creates an admin and claims its mobile number.
func (s *Service) RegisterAdmin(ctx context.Context, in AdminInput) (models.Admin, error) {
	in.Name = normalize.Name(in.Name)
	in.MobileNumber = normalize.Mobile(in.MobileNumber)

	var p problems
	if in.Name == "" {
		p.add("Name is required for admin registration")
	}
	checkMobile(&p, in.MobileNumber)
	checkPassword(&p, in.Password)
	if err := p.err(); err != nil {
		return models.Admin{}, err
	}

	if err := s.precheckMobile(ctx, in.MobileNumber); err != nil {
		return models.Admin{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.Admin{}, err
	}

	var created models.Admin
	err = s.write(ctx, "register_admin", func(ctx context.Context, u *undo) error {
		id := primitive.NewObjectID()
		if err := s.mobiles.Claim(ctx, in.MobileNumber, models.RoleAdmin, id); err != nil {
			return err
		}
		u.push(func(ctx context.Context) error { return s.mobiles.Release(ctx, in.MobileNumber, id) })

		a, err := s.admins.Create(ctx, models.Admin{
			ID:           id,
			Name:         in.Name,
			MobileNumber: in.MobileNumber,
			PasswordHash: hash,
		})
		if err != nil {
			return mapDup(err)
		}
		created = a
		return nil
	})
	return created, err
}

// RegisterEmployee creates an employee with a generated EMPnnn code unless
// one is supplied, and claims its mobile number.
func (s *Service) RegisterEmployee(ctx context.Context, in EmployeeInput) (models.Employee, error) {
	in.Name = normalize.Name(in.Name)
	in.MobileNumber = normalize.Mobile(in.MobileNumber)
	in.EmployeeID = normalize.Code(in.EmployeeID)

	var p problems
	if in.Name == "" {
		p.add("Name is required for employee registration")
	}
	checkMobile(&p, in.MobileNumber)
	checkPassword(&p, in.Password)
	if err := p.err(); err != nil {
		return models.Employee{}, err
	}

	if err := s.precheckMobile(ctx, in.MobileNumber); err != nil {
		return models.Employee{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.Employee{}, err
	}

	var created models.Employee
	for attempt := 1; ; attempt++ {
		// The sequence advances outside the write so an aborted attempt
		// does not hand the same number out again.
		code := in.EmployeeID
		if code == "" {
			n, err := s.counters.Next(ctx, counterstore.EmployeeIDs)
			if err != nil {
				return models.Employee{}, fmt.Errorf("next employee id: %w", err)
			}
			code = employeestore.FormatEmployeeID(n)
		}

		err = s.write(ctx, "register_employee", func(ctx context.Context, u *undo) error {
			id := primitive.NewObjectID()
			if err := s.mobiles.Claim(ctx, in.MobileNumber, models.RoleEmployee, id); err != nil {
				return err
			}
			u.push(func(ctx context.Context) error { return s.mobiles.Release(ctx, in.MobileNumber, id) })

			e, err := s.employees.Create(ctx, models.Employee{
				ID:           id,
				Name:         in.Name,
				MobileNumber: in.MobileNumber,
				PasswordHash: hash,
				EmployeeID:   code,
			})
			if err != nil {
				return mapDup(err)
			}
			created = e
			return nil
		})
		if err == nil && in.EmployeeID != "" {
			s.advancePastSuppliedCode(ctx, code)
		}
		// A caller-supplied code that collides is the caller's problem.
		if err == nil || in.EmployeeID != "" || !isIDCollision(err) || attempt == maxIDAttempts {
			return created, finalIDErr(err)
		}
		s.log.Warn("generated employee ID collided; retrying", zap.Int("attempt", attempt))
	}
}

// advancePastSuppliedCode keeps generated codes from colliding with a code
// the caller chose. The employee already exists, so a failure is only logged.
func (s *Service) advancePastSuppliedCode(ctx context.Context, code string) {
	n, ok := employeestore.ParseEmployeeID(code)
	if !ok {
		return
	}
	if err := s.counters.EnsureAtLeast(ctx, counterstore.EmployeeIDs, n); err != nil {
		s.log.Warn("could not advance employee ID counter",
			zap.String("employee_id", code), zap.Error(err))
	}
}

// RegisterUser creates a user referred by an existing employee, claims its
// mobile number and links it into the employee's referrals.
func (s *Service) RegisterUser(ctx context.Context, in UserInput) (models.User, error) {
	in.FullName = normalize.Name(in.FullName)
	in.FatherName = normalize.Name(in.FatherName)
	in.MobileNumber = normalize.Mobile(in.MobileNumber)
	in.EmployeeID = normalize.Code(in.EmployeeID)
	in.ProfileImage = strings.TrimSpace(in.ProfileImage)

	var p problems
	if in.FullName == "" || in.FatherName == "" || in.EmployeeID == "" || in.ProfileImage == "" {
		p.add("Full name, father name, employee ID, and profile image are required for user registration")
	}
	checkMobile(&p, in.MobileNumber)
	checkPassword(&p, in.Password)
	if err := p.err(); err != nil {
		return models.User{}, err
	}

	if _, err := s.employees.GetByEmployeeID(ctx, in.EmployeeID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrInvalidReferral
		}
		return models.User{}, fmt.Errorf("load referring employee: %w", err)
	}
	if err := s.precheckMobile(ctx, in.MobileNumber); err != nil {
		return models.User{}, err
	}
	amount, err := s.currentAmount(ctx)
	if err != nil {
		return models.User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	var created models.User
	for attempt := 1; ; attempt++ {
		n, err := s.counters.Next(ctx, counterstore.UserIDs)
		if err != nil {
			return models.User{}, fmt.Errorf("next user id: %w", err)
		}

		err = s.write(ctx, "register_user", func(ctx context.Context, u *undo) error {
			id := primitive.NewObjectID()
			if err := s.mobiles.Claim(ctx, in.MobileNumber, models.RoleUser, id); err != nil {
				return err
			}
			u.push(func(ctx context.Context) error { return s.mobiles.Release(ctx, in.MobileNumber, id) })

			usr, err := s.users.Create(ctx, models.User{
				ID:            id,
				FullName:      in.FullName,
				FatherName:    in.FatherName,
				ProfileImage:  in.ProfileImage,
				MobileNumber:  in.MobileNumber,
				PasswordHash:  hash,
				EmployeeID:    in.EmployeeID,
				UserID:        userstore.FormatUserID(n),
				PaymentAmount: amount,
			}, s.validity)
			if err != nil {
				return mapDup(err)
			}
			u.push(func(ctx context.Context) error { _, err := s.users.Delete(ctx, id); return err })

			if err := s.employees.AddReferral(ctx, in.EmployeeID, id); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return ErrInvalidReferral
				}
				return fmt.Errorf("link referral: %w", err)
			}
			created = usr
			return nil
		})
		if err == nil || !isIDCollision(err) || attempt == maxIDAttempts {
			return created, finalIDErr(err)
		}
		s.log.Warn("generated user ID collided; retrying", zap.Int("attempt", attempt))
	}
}

func (s *Service) currentAmount(ctx context.Context) (float64, error) {
	ps, err := s.settings.GetActive(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.settings.DefaultAmount(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("load payment settings: %w", err)
	}
	if ps.Amount <= 0 {
		return s.settings.DefaultAmount(), nil
	}
	return ps.Amount, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Updates & deletes                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// UpdateUserProfile applies a self-service profile edit. A new mobile number
// is claimed before the old one is released.
func (s *Service) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) (*models.User, error) {
	newMobile := normalize.Mobile(upd.MobileNumber)
	upd.MobileNumber = newMobile
	if newMobile != "" {
		var p problems
		checkMobile(&p, newMobile)
		if err := p.err(); err != nil {
			return nil, err
		}
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if newMobile == current.MobileNumber {
		upd.MobileNumber = ""
		newMobile = ""
	}

	var updated *models.User
	err = s.write(ctx, "update_user_profile", func(ctx context.Context, u *undo) error {
		if newMobile != "" {
			if err := s.mobiles.Claim(ctx, newMobile, models.RoleUser, id); err != nil {
				return err
			}
			u.push(func(ctx context.Context) error { return s.mobiles.Release(ctx, newMobile, id) })
		}

		usr, err := s.users.UpdateProfile(ctx, id, upd)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return mapDup(err)
		}

		if newMobile != "" {
			if err := s.mobiles.Release(ctx, current.MobileNumber, id); err != nil {
				return fmt.Errorf("release old mobile: %w", err)
			}
		}
		updated = usr
		return nil
	})
	return updated, err
}

// DeleteEmployee removes an employee and frees its mobile number. Users it
// referred keep their employee ID.
func (s *Service) DeleteEmployee(ctx context.Context, id primitive.ObjectID) error {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	return s.write(ctx, "delete_employee", func(ctx context.Context, u *undo) error {
		n, err := s.employees.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return s.mobiles.Release(ctx, e.MobileNumber, id)
	})
}

// DeleteUser removes a user, drops it from its employee's referrals and
// frees its mobile number.
func (s *Service) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	usr, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	return s.write(ctx, "delete_user", func(ctx context.Context, u *undo) error {
		n, err := s.users.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := s.employees.RemoveReferral(ctx, usr.EmployeeID, id); err != nil {
			return fmt.Errorf("unlink referral: %w", err)
		}
		return s.mobiles.Release(ctx, usr.MobileNumber, id)
	})
}
