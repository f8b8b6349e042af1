// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	adminstore "github.com/dalemusser/healthcredit/internal/app/store/admins"
	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/app/system/tasks"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// the configured deadlines, makes sure an admin can sign in, and starts the
// background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	db := deps.HealthCreditMongoDatabase
	if err := ensureDefaultAdmin(ctx, db, newRegistration(db, appCfg, logger), appCfg, logger); err != nil {
		return err
	}

	bg := deps.Background
	if bg == nil {
		return nil
	}
	bg.started = time.Now()

	var jobs []tasks.Job
	if job, ok := tasks.AuditRetentionJob(audit.New(db), logger, appCfg.AuditRetention); ok {
		jobs = append(jobs, job)
	}
	bg.runner = workers.NewRunner(logger, jobs...)
	bg.runner.Start()
	return nil
}

// newRegistration builds the registration service from config.
func newRegistration(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *registration.Service {
	settings := paymentsettingsstore.New(db, appCfg.DefaultPaymentAmount)
	return registration.New(db, settings, registration.Config{
		MembershipValidity: appCfg.MembershipValidity,
		BcryptCost:         appCfg.BcryptCost,
	}, logger)
}

// ensureDefaultAdmin creates the configured default admin unless an admin
// with that mobile number already exists. A blank mobile disables it.
func ensureDefaultAdmin(ctx context.Context, db *mongo.Database, reg *registration.Service, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.DefaultAdminMobile == "" {
		logger.Debug("default admin not configured")
		return nil
	}

	_, err := adminstore.New(db).GetByMobile(ctx, appCfg.DefaultAdminMobile)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	a, err := reg.RegisterAdmin(ctx, registration.AdminInput{
		Name:         appCfg.DefaultAdminName,
		MobileNumber: appCfg.DefaultAdminMobile,
		Password:     appCfg.DefaultAdminPassword,
	})
	if errors.Is(err, registration.ErrMobileTaken) {
		logger.Warn("default admin mobile number belongs to another account; not creating admin",
			zap.String("mobile", appCfg.DefaultAdminMobile))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("created default admin",
		zap.String("id", a.ID.Hex()),
		zap.String("mobile", a.MobileNumber))
	return nil
}
