// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// devJWTSecret is accepted outside production only.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest JWT secret accepted in production.
const minProdSecretLen = 32

// appConfigKeys defines the configuration keys for Health Credit.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: HEALTHCREDIT_MONGO_URI, HEALTHCREDIT_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "health_credit", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Credential tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 token signing secret (must be strong in production)"},
	{Name: "token_cookie_name", Default: auth.DefaultCookieName, Desc: "Credential cookie name"},
	{Name: "token_cookie_domain", Default: "", Desc: "Credential cookie domain (blank means current host)"},
	{Name: "token_ttl", Default: "168h", Desc: "Token lifetime (e.g., 168h, 24h)"},

	// Registration
	{Name: "membership_validity", Default: "17520h", Desc: "Membership length for new users (default: 730 days)"},
	{Name: "default_payment_amount", Default: models.DefaultPaymentAmount, Desc: "Membership fee used until payment settings are saved"},
	{Name: "bcrypt_cost", Default: registration.DefaultBcryptCost, Desc: "bcrypt cost for password hashes"},
	{Name: "allow_admin_registration", Default: false, Desc: "Allow POST /api/auth/register to create admins"},

	// Login rate limiting
	{Name: "login_rate_limit_ip", Default: 20, Desc: "Login attempts allowed per client IP per window"},
	{Name: "login_rate_limit_mobile", Default: 5, Desc: "Login attempts allowed per mobile number per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window"},
	{Name: "rate_limit_redis_url", Default: "", Desc: "Redis URL for shared rate limit state (blank keeps it in memory)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps everything)"},

	// Default admin bootstrap
	{Name: "default_admin_name", Default: "System Admin", Desc: "Name of the admin created when none exists"},
	{Name: "default_admin_mobile", Default: "", Desc: "Mobile number of the admin created when none exists (blank disables)"},
	{Name: "default_admin_password", Default: "", Desc: "Password of the admin created when none exists"},

	// Database deadlines
	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for database pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and aggregates"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection writes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HEALTHCREDIT_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HEALTHCREDIT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:       appValues.String("jwt_secret"),
		TokenCookieName: appValues.String("token_cookie_name"),
		TokenCookieDom:  appValues.String("token_cookie_domain"),
		TokenTTL:        appValues.Duration("token_ttl", auth.DefaultTokenTTL),

		MembershipValidity:     appValues.Duration("membership_validity", models.DefaultMembershipValidity),
		DefaultPaymentAmount:   float64(appValues.Int("default_payment_amount")),
		BcryptCost:             appValues.Int("bcrypt_cost"),
		AllowAdminRegistration: appValues.Bool("allow_admin_registration"),

		LoginRateLimitIP:     appValues.Int("login_rate_limit_ip"),
		LoginRateLimitMobile: appValues.Int("login_rate_limit_mobile"),
		LoginRateWindow:      appValues.Duration("login_rate_window", time.Minute),
		RateLimitRedisURL:    appValues.String("rate_limit_redis_url"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		DefaultAdminName:     appValues.String("default_admin_name"),
		DefaultAdminMobile:   normalize.Mobile(appValues.String("default_admin_mobile")),
		DefaultAdminPassword: appValues.String("default_admin_password"),

		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env == "prod", appCfg)
}

func validateAppConfig(prod bool, appCfg AppConfig) error {
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if prod {
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret must be changed from the development default in production")
		}
		if len(appCfg.JWTSecret) < minProdSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d characters in production", minProdSecretLen)
		}
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if appCfg.DefaultPaymentAmount < 0 {
		return fmt.Errorf("default_payment_amount must not be negative")
	}
	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		return fmt.Errorf("audit_log_auth must be all, db, log or off")
	}
	if !auditlog.ValidMode(appCfg.AuditLogAdmin) {
		return fmt.Errorf("audit_log_admin must be all, db, log or off")
	}
	if appCfg.DefaultAdminMobile != "" {
		if !normalize.IsTenDigitMobile(appCfg.DefaultAdminMobile) {
			return fmt.Errorf("default_admin_mobile must be a 10-digit mobile number")
		}
		if len(appCfg.DefaultAdminPassword) < registration.MinPasswordLength {
			return fmt.Errorf("default_admin_password must be at least %d characters", registration.MinPasswordLength)
		}
	}
	return nil
}
