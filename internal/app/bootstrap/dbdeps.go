// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/healthcredit/internal/app/system/ratelimit"
	"github.com/dalemusser/healthcredit/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	HealthCreditMongoClient   *mongo.Client
	HealthCreditMongoDatabase *mongo.Database

	// Background is filled in by Startup and BuildHandler and torn down by
	// Shutdown. DBDeps is passed by value, so it is shared through a pointer.
	Background *background
}

// background tracks long-lived resources that need stopping on shutdown.
type background struct {
	started  time.Time
	runner   *workers.Runner
	redis    *redis.Client
	limiters []*ratelimit.Limiter
}
