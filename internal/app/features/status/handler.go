// internal/app/features/status/handler.go
package status

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler reports process and database health to admins.
type Handler struct {
	Client  *mongo.Client
	Log     *zap.Logger
	Started time.Time
}

// NewHandler records started as the process start time for uptime reporting.
func NewHandler(client *mongo.Client, started time.Time, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Log:     logger,
		Started: started,
	}
}
