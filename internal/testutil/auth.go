package testutil

import (
	"net/http"
	"testing"
	"time"

	principalstore "github.com/dalemusser/healthcredit/internal/app/store/principals"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TestJWTSecret signs every token issued in tests.
const TestJWTSecret = "test-secret-0123456789abcdef0123456789"

// NewResolver returns a resolver that loads principals from db and signs
// tokens with TestJWTSecret.
func NewResolver(t *testing.T, db *mongo.Database) *auth.Resolver {
	t.Helper()
	tokens, err := auth.NewTokenIssuer(TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	rv, err := auth.NewResolver(tokens, auth.CookieConfig{}, principalstore.NewLoaders(db), zap.NewNop())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return rv
}

// WithToken signs a token for id and role and attaches it to r as the
// credential cookie.
func WithToken(t *testing.T, rv *auth.Resolver, r *http.Request, id primitive.ObjectID, role models.Role) *http.Request {
	t.Helper()
	raw, err := rv.Tokens().Issue(id.Hex(), role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	r.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: raw})
	return r
}
