// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one, and sequentially when it does not.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes meaning "transactions are not available here":
// 20 IllegalOperation, 51 NoSuchTransaction-era standalone refusal,
// 263 OperationNotSupportedInTransaction.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, some DocumentDB tiers).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return notSupportedCodes[ce.Code]
	}
	// Aborts, write conflicts and other session errors are real failures
	// and must not be retried without a transaction.
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "transaction") && strings.Contains(s, "replica set")
}

// Run executes fn in a transaction on client. If the server refuses
// transactions, fn is executed once more without one and a warning is logged;
// callers that need all-or-nothing behaviour check Active(ctx) and
// compensate themselves.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

// Active reports whether ctx carries a transaction started by Run.
func Active(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}

func warnFallback(log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Warn("transactions unavailable; running writes without one", zap.Error(err))
}
