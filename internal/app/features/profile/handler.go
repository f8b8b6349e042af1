// internal/app/features/profile/handler.go
package profile

import (
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/users: the public membership card lookup and the
// signed-in user's own profile.
type Handler struct {
	Log          *zap.Logger
	Users        *userstore.Store
	Registration *registration.Service
	AuditLog     *auditlog.Logger
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, reg *registration.Service, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		Users:        userstore.New(db),
		Registration: reg,
		AuditLog:     auditLog,
	}
}
