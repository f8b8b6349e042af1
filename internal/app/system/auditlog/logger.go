// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	"github.com/dalemusser/healthcredit/internal/app/system/ratelimit"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, registration, profile).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for admin action events (employee/user deletes, payment changes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// ValidMode reports whether mode is one of "all", "db", "log" or "off".
func ValidMode(mode string) bool {
	switch mode {
	case "all", "db", "log", "off":
		return true
	}
	return false
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.SubjectID != nil {
		fields = append(fields, zap.String("subject_id", event.SubjectID.Hex()))
	}
	if event.SubjectRole != "" {
		fields = append(fields, zap.String("subject_role", string(event.SubjectRole)))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func adminEvent(r *http.Request, eventType string, actorID primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		ActorRole: models.RoleAdmin,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, id primitive.ObjectID, role models.Role, mobile string) {
	e := authEvent(r, audit.EventLoginSuccess, true)
	e.SubjectID = &id
	e.SubjectRole = role
	e.Details = map[string]string{"mobile_number": mobile}
	l.Log(ctx, e)
}

// LoginFailedUnknownMobile logs a failed login for a mobile number no account uses.
func (l *Logger) LoginFailedUnknownMobile(ctx context.Context, r *http.Request, mobile string) {
	e := authEvent(r, audit.EventLoginFailedUnknownMobile, false)
	e.FailureReason = "mobile number not registered"
	e.Details = map[string]string{"attempted_mobile_number": mobile}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, id primitive.ObjectID, role models.Role, mobile string) {
	e := authEvent(r, audit.EventLoginFailedWrongPassword, false)
	e.SubjectID = &id
	e.SubjectRole = role
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"mobile_number": mobile}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, mobile string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"mobile_number": mobile}
	l.Log(ctx, e)
}

// Logout logs a logout. id is nil when the request carried no valid token.
func (l *Logger) Logout(ctx context.Context, r *http.Request, id *primitive.ObjectID, role models.Role) {
	e := authEvent(r, audit.EventLogout, true)
	e.SubjectID = id
	e.SubjectRole = role
	l.Log(ctx, e)
}

// Registered logs a self-service registration.
func (l *Logger) Registered(ctx context.Context, r *http.Request, id primitive.ObjectID, role models.Role, code string) {
	e := authEvent(r, audit.EventRegistered, true)
	e.SubjectID = &id
	e.SubjectRole = role
	if code != "" {
		e.Details = map[string]string{"code": code}
	}
	l.Log(ctx, e)
}

// ProfileUpdated logs a user editing their own profile.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, id primitive.ObjectID, mobileChanged bool) {
	e := authEvent(r, audit.EventProfileUpdated, true)
	e.SubjectID = &id
	e.SubjectRole = models.RoleUser
	e.ActorID = &id
	e.ActorRole = models.RoleUser
	e.Details = map[string]string{"mobile_changed": strconv.FormatBool(mobileChanged)}
	l.Log(ctx, e)
}

// --- Admin Events ---

// EmployeeCreated logs an admin creating an employee.
func (l *Logger) EmployeeCreated(ctx context.Context, r *http.Request, actorID, employeeID primitive.ObjectID, code string) {
	e := adminEvent(r, audit.EventEmployeeCreated, actorID)
	e.SubjectID = &employeeID
	e.SubjectRole = models.RoleEmployee
	e.Details = map[string]string{"employee_id": code}
	l.Log(ctx, e)
}

// EmployeeDeleted logs an admin deleting an employee.
func (l *Logger) EmployeeDeleted(ctx context.Context, r *http.Request, actorID, employeeID primitive.ObjectID) {
	e := adminEvent(r, audit.EventEmployeeDeleted, actorID)
	e.SubjectID = &employeeID
	e.SubjectRole = models.RoleEmployee
	l.Log(ctx, e)
}

// UserDeleted logs an admin deleting a user.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	e := adminEvent(r, audit.EventUserDeleted, actorID)
	e.SubjectID = &userID
	e.SubjectRole = models.RoleUser
	l.Log(ctx, e)
}

// PaymentStatusChanged logs an admin setting a user's payment status.
func (l *Logger) PaymentStatusChanged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, status models.PaymentStatus) {
	e := adminEvent(r, audit.EventPaymentStatusChanged, actorID)
	e.SubjectID = &userID
	e.SubjectRole = models.RoleUser
	e.Details = map[string]string{"payment_status": string(status)}
	l.Log(ctx, e)
}

// PaymentSettingsUpdated logs an admin changing the registration QR code or amount.
func (l *Logger) PaymentSettingsUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, amount float64, qrChanged bool) {
	e := adminEvent(r, audit.EventPaymentSettingsUpdated, actorID)
	e.Details = map[string]string{
		"amount":     strconv.FormatFloat(amount, 'f', -1, 64),
		"qr_changed": strconv.FormatBool(qrChanged),
	}
	l.Log(ctx, e)
}
