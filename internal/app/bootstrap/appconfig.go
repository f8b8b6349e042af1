// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is passed by value into every lifecycle hook and is never
// modified after LoadConfig returns.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Credential tokens
	JWTSecret       string        // HS256 signing secret (at least 32 bytes in production)
	TokenCookieName string        // Cookie that carries the token (default: token)
	TokenCookieDom  string        // Cookie domain (blank means current host)
	TokenTTL        time.Duration // Token and cookie lifetime

	// Registration
	MembershipValidity     time.Duration // Length of a new user's membership
	DefaultPaymentAmount   float64       // Fee used until payment settings exist
	BcryptCost             int
	AllowAdminRegistration bool // Lets POST /api/auth/register create admins

	// Login rate limiting
	LoginRateLimitIP     int           // Attempts per window per client IP
	LoginRateLimitMobile int           // Attempts per window per mobile number
	LoginRateWindow      time.Duration // Window length
	RateLimitRedisURL    string        // Shares limiter state across instances when set

	// Audit logging
	AuditLogAuth   string        // "all", "db", "log" or "off"
	AuditLogAdmin  string        // "all", "db", "log" or "off"
	AuditRetention time.Duration // Events older than this are purged; 0 keeps everything

	// Default admin, created at startup when no admin exists
	DefaultAdminName     string
	DefaultAdminMobile   string
	DefaultAdminPassword string

	// Per-operation database deadlines
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
