package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Loader fetches one principal by id from a single collection. It returns
// ErrPrincipalNotFound when no record has the id; any other error is treated
// as a storage failure.
type Loader func(ctx context.Context, id primitive.ObjectID) (*Principal, error)

// Loaders maps every role to the loader for its collection.
type Loaders struct {
	Admin    Loader
	Employee Loader
	User     Loader
}

func (l Loaders) forRole(r models.Role) Loader {
	switch r {
	case models.RoleAdmin:
		return l.Admin
	case models.RoleEmployee:
		return l.Employee
	case models.RoleUser:
		return l.User
	}
	return nil
}

// Resolver turns a request credential into a loaded Principal.
type Resolver struct {
	tokens  *TokenIssuer
	cookies CookieConfig
	loaders Loaders
	log     *zap.Logger
}

// NewResolver builds a resolver. Every role must have a loader.
func NewResolver(tokens *TokenIssuer, cookies CookieConfig, loaders Loaders, logger *zap.Logger) (*Resolver, error) {
	if tokens == nil {
		return nil, errors.New("auth: token issuer is nil")
	}
	for _, r := range models.AllRoles() {
		if loaders.forRole(r) == nil {
			return nil, fmt.Errorf("auth: no loader for role %q", r)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{tokens: tokens, cookies: cookies, loaders: loaders, log: logger}, nil
}

// Tokens returns the issuer used to verify credentials.
func (rv *Resolver) Tokens() *TokenIssuer { return rv.tokens }

// Cookies returns the credential cookie settings.
func (rv *Resolver) Cookies() CookieConfig { return rv.cookies }

// Resolve verifies raw and loads the principal it names from the collection
// selected by its role claim. No other collection is consulted.
func (rv *Resolver) Resolve(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrNoCredential
	}
	claims, err := rv.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed principal id", ErrInvalidCredential)
	}

	load := rv.loaders.forRole(claims.Role)
	if load == nil {
		return nil, fmt.Errorf("%w: no loader for role %q", ErrInvalidCredential, claims.Role)
	}
	p, err := load(ctx, oid)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, fmt.Errorf("%w: %s %s not found", ErrInvalidCredential, claims.Role, claims.ID)
		}
		return nil, fmt.Errorf("load %s principal: %w", claims.Role, err)
	}
	if p == nil || p.Kind() != claims.Role {
		return nil, fmt.Errorf("%w: loader returned wrong principal kind", ErrInvalidCredential)
	}

	p.BackfillRole(claims.Role)
	if p.Role() != claims.Role {
		return nil, fmt.Errorf("%w: stored role %q does not match claim", ErrInvalidCredential, p.Role())
	}
	return p, nil
}

// Authenticate resolves the request credential and attaches the principal.
// Authentication failures answer 401 and clear the credential cookie;
// storage failures answer 500 and leave the cookie alone.
func (rv *Resolver) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := rv.Resolve(r.Context(), rv.cookies.Credential(r))
		if err != nil {
			rv.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, WithPrincipal(r, p))
	})
}

func (rv *Resolver) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoCredential):
		rv.cookies.Clear(w)
		respond.Coded(w, http.StatusUnauthorized, "Access denied. No token provided.", CodeNoToken)
	case errors.Is(err, ErrExpiredCredential):
		rv.cookies.Clear(w)
		respond.Coded(w, http.StatusUnauthorized, "Token expired. Please login again.", CodeTokenExpired)
	case errors.Is(err, ErrInvalidCredential):
		rv.log.Debug("credential rejected", zap.String("path", r.URL.Path), zap.Error(err))
		rv.cookies.Clear(w)
		respond.Coded(w, http.StatusUnauthorized, "Invalid token.", CodeInvalidToken)
	default:
		rv.log.Error("resolve principal", zap.String("path", r.URL.Path), zap.Error(err))
		respond.ServerError(w)
	}
}

// Machine-readable codes carried in 401 bodies.
const (
	CodeNoToken      = "no_token"
	CodeTokenExpired = "token_expired"
	CodeInvalidToken = "invalid_token"
)
