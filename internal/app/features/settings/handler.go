// internal/app/features/settings/handler.go
package settings

import (
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler owns the admin-facing payment settings handlers.
type Handler struct {
	Settings *paymentsettingsstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a Handler bound to the payment settings store and logger.
func NewHandler(settings *paymentsettingsstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Settings: settings,
		AuditLog: auditLog,
		Log:      logger,
	}
}
