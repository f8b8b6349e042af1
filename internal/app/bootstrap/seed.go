// internal/app/bootstrap/seed.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"go.uber.org/zap"
)

// Sample data written by Seed when no default admin is configured.
const (
	seedAdminName     = "System Admin"
	seedAdminMobile   = "9999999999"
	seedAdminPassword = "admin123"
)

var seedEmployees = []registration.EmployeeInput{
	{Name: "John Doe", MobileNumber: "8888888888", Password: "employee123", EmployeeID: "EMP001"},
	{Name: "Jane Smith", MobileNumber: "7777777777", Password: "employee123", EmployeeID: "EMP002"},
}

// Seed creates the default admin and the sample employees. Records whose
// mobile number is already registered are skipped, so Seed can be re-run.
func Seed(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.DefaultAdminMobile == "" {
		appCfg.DefaultAdminName = seedAdminName
		appCfg.DefaultAdminMobile = seedAdminMobile
		appCfg.DefaultAdminPassword = seedAdminPassword
	}

	db := deps.HealthCreditMongoDatabase
	reg := newRegistration(db, appCfg, logger)
	if err := ensureDefaultAdmin(ctx, db, reg, appCfg, logger); err != nil {
		return err
	}

	for _, in := range seedEmployees {
		e, err := reg.RegisterEmployee(ctx, in)
		switch {
		case errors.Is(err, registration.ErrMobileTaken), errors.Is(err, registration.ErrDuplicateID):
			logger.Info("sample employee already present", zap.String("employee_id", in.EmployeeID))
		case err != nil:
			return err
		default:
			logger.Info("created sample employee",
				zap.String("employee_id", e.EmployeeID),
				zap.String("mobile", e.MobileNumber))
		}
	}
	return nil
}
