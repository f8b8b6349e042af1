// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work and tears down backend connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if bg := deps.Background; bg != nil {
		if bg.runner != nil {
			bg.runner.Stop()
		}
		for _, l := range bg.limiters {
			l.Stop()
		}
		if bg.redis != nil {
			if err := bg.redis.Close(); err != nil {
				logger.Warn("redis close failed", zap.Error(err))
			}
		}
	}

	if deps.HealthCreditMongoClient != nil {
		logger.Info("disconnecting Health Credit MongoDB client")
		if err := deps.HealthCreditMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
