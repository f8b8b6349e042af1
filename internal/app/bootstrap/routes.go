// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/healthcredit/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/healthcredit/internal/app/features/dashboard"
	employeesfeature "github.com/dalemusser/healthcredit/internal/app/features/employees"
	healthfeature "github.com/dalemusser/healthcredit/internal/app/features/health"
	loginfeature "github.com/dalemusser/healthcredit/internal/app/features/login"
	membersfeature "github.com/dalemusser/healthcredit/internal/app/features/members"
	profilefeature "github.com/dalemusser/healthcredit/internal/app/features/profile"
	settingsfeature "github.com/dalemusser/healthcredit/internal/app/features/settings"
	statusfeature "github.com/dalemusser/healthcredit/internal/app/features/status"
	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	principalstore "github.com/dalemusser/healthcredit/internal/app/store/principals"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/ratelimit"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Health Credit builds the identity resolver once and mounts the JSON API
// under /api: auth, users, employees and the admin area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.HealthCreditMongoDatabase

	// Identity resolver: verifies the token and reloads the principal on every request.
	tokens, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.TokenTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	cookies := auth.CookieConfig{
		Name:   appCfg.TokenCookieName,
		Domain: appCfg.TokenCookieDom,
		Secure: coreCfg.Env == "prod",
		MaxAge: appCfg.TokenTTL,
	}
	rv, err := auth.NewResolver(tokens, cookies, principalstore.NewLoaders(db), logger)
	if err != nil {
		logger.Error("identity resolver init failed", zap.Error(err))
		return nil, err
	}

	limiter, err := buildLoginLimiter(appCfg, deps.Background, logger)
	if err != nil {
		return nil, err
	}

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	settings := paymentsettingsstore.New(db, appCfg.DefaultPaymentAmount)
	reg := registration.New(db, settings, registration.Config{
		MembershipValidity: appCfg.MembershipValidity,
		BcryptCost:         appCfg.BcryptCost,
	}, logger)

	started := time.Now()
	if deps.Background != nil && !deps.Background.started.IsZero() {
		started = deps.Background.started
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.HealthCreditMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Authentication and registration
		loginHandler := loginfeature.NewHandler(db, rv, reg, settings, loginfeature.Options{
			Limiter:                limiter,
			AuditLog:               auditLog,
			AllowAdminRegistration: appCfg.AllowAdminRegistration,
		}, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		// End-user profile
		profileHandler := profilefeature.NewHandler(db, reg, auditLog, logger)
		api.Mount("/users", profilefeature.Routes(profileHandler, rv))

		// Employee dashboard and referrals
		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		api.Mount("/employees", dashboardfeature.EmployeeRoutes(dashboardHandler, rv))

		// Admin area
		api.Route("/admin", func(admin chi.Router) {
			admin.Mount("/dashboard", dashboardfeature.AdminRoutes(dashboardHandler, rv))

			statusHandler := statusfeature.NewHandler(deps.HealthCreditMongoClient, started, logger)
			admin.Mount("/health", statusfeature.Routes(statusHandler, rv))

			employeesHandler := employeesfeature.NewHandler(db, reg, auditLog, logger)
			admin.Mount("/employees", employeesfeature.Routes(employeesHandler, rv))

			membersHandler := membersfeature.NewHandler(db, reg, auditLog, logger)
			admin.Mount("/users", membersfeature.Routes(membersHandler, rv))

			settingsHandler := settingsfeature.NewHandler(settings, auditLog, logger)
			admin.Mount("/payment-settings", settingsfeature.Routes(settingsHandler, rv))

			auditHandler := auditlogfeature.NewHandler(db, logger)
			admin.Mount("/audit", auditlogfeature.Routes(auditHandler, rv))
		})
	})

	return r, nil
}

// buildLoginLimiter returns a Redis-backed limiter when rate_limit_redis_url
// is set and an in-memory one otherwise. Created resources are recorded in
// bg so Shutdown can release them.
func buildLoginLimiter(appCfg AppConfig, bg *background, logger *zap.Logger) (*ratelimit.LoginLimiter, error) {
	if appCfg.RateLimitRedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), appCfg.TimeoutShort)
		defer cancel()
		client, err := ratelimit.DialRedis(ctx, appCfg.RateLimitRedisURL)
		if err != nil {
			logger.Error("redis connect failed", zap.Error(err))
			return nil, err
		}
		if bg != nil {
			bg.redis = client
		}
		logger.Info("login rate limiting uses redis")
		return ratelimit.NewLoginLimiter(
			ratelimit.NewRedis(client, "healthcredit:login:", appCfg.LoginRateLimitIP, appCfg.LoginRateWindow),
			ratelimit.NewRedis(client, "healthcredit:login:", appCfg.LoginRateLimitMobile, appCfg.LoginRateWindow),
		), nil
	}

	ipLimiter := ratelimit.New(appCfg.LoginRateLimitIP, appCfg.LoginRateWindow)
	mobileLimiter := ratelimit.New(appCfg.LoginRateLimitMobile, appCfg.LoginRateWindow)
	if bg != nil {
		bg.limiters = append(bg.limiters, ipLimiter, mobileLimiter)
	}
	return ratelimit.NewLoginLimiter(ipLimiter, mobileLimiter), nil
}
