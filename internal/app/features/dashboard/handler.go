// internal/app/features/dashboard/handler.go
package dashboard

import (
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the employee dashboard and the admin analytics dashboard.
type Handler struct {
	Log       *zap.Logger
	Employees *employeestore.Store
	Users     *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		Employees: employeestore.New(db),
		Users:     userstore.New(db),
	}
}
