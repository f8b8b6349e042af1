// internal/app/features/employees/handler.go
package employees

import (
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves admin employee management under /api/admin/employees.
type Handler struct {
	Log          *zap.Logger
	Employees    *employeestore.Store
	Registration *registration.Service
	AuditLog     *auditlog.Logger
}

func NewHandler(db *mongo.Database, reg *registration.Service, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		Employees:    employeestore.New(db),
		Registration: reg,
		AuditLog:     auditLog,
	}
}
