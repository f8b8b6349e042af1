// internal/app/features/login/handler.go
package login

import (
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/credentials"
	"github.com/dalemusser/healthcredit/internal/app/system/ratelimit"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/auth: sign-in, self-registration, sign-out and the
// public lookups the registration form needs.
type Handler struct {
	Log          *zap.Logger
	Resolver     *auth.Resolver
	Verifier     *credentials.Verifier
	Registration *registration.Service
	Employees    *employeestore.Store
	Settings     *paymentsettingsstore.Store
	Limiter      *ratelimit.LoginLimiter // nil disables login rate limiting
	AuditLog     *auditlog.Logger

	// AllowAdminRegistration lets POST /register create admins.
	AllowAdminRegistration bool
}

// Options configures optional Handler behavior.
type Options struct {
	Limiter                *ratelimit.LoginLimiter
	AuditLog               *auditlog.Logger
	AllowAdminRegistration bool
}

func NewHandler(
	db *mongo.Database,
	resolver *auth.Resolver,
	reg *registration.Service,
	settings *paymentsettingsstore.Store,
	opts Options,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:                    logger,
		Resolver:               resolver,
		Verifier:               credentials.NewVerifier(db),
		Registration:           reg,
		Employees:              employeestore.New(db),
		Settings:               settings,
		Limiter:                opts.Limiter,
		AuditLog:               opts.AuditLog,
		AllowAdminRegistration: opts.AllowAdminRegistration,
	}
}
