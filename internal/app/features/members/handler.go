// internal/app/features/members/handler.go
package members

import (
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves admin management of registered users (members) under
// /api/admin/users.
type Handler struct {
	Log          *zap.Logger
	Users        *userstore.Store
	Registration *registration.Service
	AuditLog     *auditlog.Logger
}

func NewHandler(db *mongo.Database, reg *registration.Service, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		Users:        userstore.New(db),
		Registration: reg,
		AuditLog:     auditLog,
	}
}
