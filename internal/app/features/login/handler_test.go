package login_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/features/login"
	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/auth"
	"github.com/dalemusser/healthcredit/internal/app/system/ratelimit"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/healthcredit/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	handler  *login.Handler
	router   chi.Router
	fixtures *testutil.Fixtures
	db       *mongo.Database
	audit    *audit.Store
}

func newTestEnv(t *testing.T, opts login.Options) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	resolver := testutil.NewResolver(t, db)

	settings := paymentsettingsstore.New(db, models.DefaultPaymentAmount)
	reg := registration.New(db, settings, registration.Config{BcryptCost: bcrypt.MinCost}, logger)

	auditStore := audit.New(db)
	if opts.AuditLog == nil {
		opts.AuditLog = auditlog.New(auditStore, logger, auditlog.Config{Auth: "db", Admin: "db"})
	}

	h := login.NewHandler(db, resolver, reg, settings, opts, logger)
	return &testEnv{
		handler:  h,
		router:   login.Routes(h),
		fixtures: testutil.NewFixtures(t, db),
		db:       db,
		audit:    auditStore,
	}
}

func (e *testEnv) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func loginBody(mobile, password string) map[string]string {
	return map[string]string{"mobileNumber": mobile, "password": password}
}

func TestHandleLogin_EachRole(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := env.fixtures.CreateAdmin(ctx, "Root Admin", "9000000001")
	emp := env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")
	usr := env.fixtures.CreateUser(ctx, "Asha Devi", "9000000003", "EMP001", "HC00000001")

	tests := []struct {
		name      string
		mobile    string
		wantID    string
		wantRole  models.Role
		wantName  string
		wantEmpID string
	}{
		{"admin", admin.MobileNumber, admin.ID.Hex(), models.RoleAdmin, "Root Admin", ""},
		{"employee", emp.MobileNumber, emp.ID.Hex(), models.RoleEmployee, "Ravi Kumar", "EMP001"},
		{"user", usr.MobileNumber, usr.ID.Hex(), models.RoleUser, "Asha Devi", "EMP001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(testutil.NewJSONRequest("POST", "/login", loginBody(tt.mobile, testutil.TestPassword)))
			rec.AssertStatus(t, http.StatusOK)

			var body struct {
				User auth.Summary `json:"user"`
			}
			rec.DecodeJSON(t, &body)
			if body.User.ID != tt.wantID {
				t.Errorf("id = %q, want %q", body.User.ID, tt.wantID)
			}
			if body.User.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", body.User.Role, tt.wantRole)
			}
			if body.User.Name != tt.wantName {
				t.Errorf("name = %q, want %q", body.User.Name, tt.wantName)
			}
			if body.User.EmployeeID != tt.wantEmpID {
				t.Errorf("employeeId = %q, want %q", body.User.EmployeeID, tt.wantEmpID)
			}

			c, ok := rec.Cookie(auth.DefaultCookieName)
			if !ok || c.Value == "" {
				t.Fatal("expected token cookie")
			}
			if !c.HttpOnly {
				t.Error("token cookie must be HttpOnly")
			}
			claims, err := env.handler.Resolver.Tokens().Parse(c.Value)
			if err != nil {
				t.Fatalf("issued token does not parse: %v", err)
			}
			if claims.ID != tt.wantID || claims.Role != tt.wantRole {
				t.Errorf("claims = {%s %s}, want {%s %s}", claims.ID, claims.Role, tt.wantID, tt.wantRole)
			}
		})
	}
}

func TestHandleLogin_Rejected(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	emp := env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	tests := []struct {
		name      string
		mobile    string
		password  string
		wantEvent string
	}{
		{"wrong password", emp.MobileNumber, "not-the-password", audit.EventLoginFailedWrongPassword},
		{"unknown mobile", "9999999999", testutil.TestPassword, audit.EventLoginFailedUnknownMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(testutil.NewJSONRequest("POST", "/login", loginBody(tt.mobile, tt.password)))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, "Invalid credentials")
			if _, ok := rec.Cookie(auth.DefaultCookieName); ok {
				t.Error("rejected login must not set a token cookie")
			}

			n, err := env.audit.CountByFilter(ctx, audit.QueryFilter{EventType: tt.wantEvent})
			if err != nil {
				t.Fatalf("CountByFilter: %v", err)
			}
			if n != 1 {
				t.Errorf("%s events = %d, want 1", tt.wantEvent, n)
			}
		})
	}
}

func TestHandleLogin_Validation(t *testing.T) {
	env := newTestEnv(t, login.Options{})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"short mobile", loginBody("12345", "secret123"), "10-digit mobile number"},
		{"short password", loginBody("9000000001", "abc"), "at least 6 characters"},
		{"not json", "plain", "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(testutil.NewJSONRequest("POST", "/login", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.want)
		})
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	ipLimiter := ratelimit.New(100, time.Minute)
	mobileLimiter := ratelimit.New(2, time.Minute)
	defer ipLimiter.Stop()
	defer mobileLimiter.Stop()

	env := newTestEnv(t, login.Options{Limiter: ratelimit.NewLoginLimiter(ipLimiter, mobileLimiter)})

	for i := 0; i < 2; i++ {
		rec := env.do(testutil.NewJSONRequest("POST", "/login", loginBody("9000000009", "wrongpass")))
		rec.AssertStatus(t, http.StatusBadRequest)
	}
	rec := env.do(testutil.NewJSONRequest("POST", "/login", loginBody("9000000009", "wrongpass")))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestHandleRegister_User(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	emp := env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	rec := env.do(testutil.NewJSONRequest("POST", "/register", map[string]string{
		"role":         "user",
		"fullName":     "Asha Devi",
		"fatherName":   "Mohan Lal",
		"mobileNumber": "9000000010",
		"password":     "secret123",
		"employeeId":   "emp001",
		"profileImage": "data:image/png;base64,iVBORw0KGgo=",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Registration successful")

	var body struct {
		User struct {
			ID        string    `json:"id"`
			UserID    string    `json:"userId"`
			Role      string    `json:"role"`
			StartDate time.Time `json:"startDate"`
			EndDate   time.Time `json:"endDate"`
		} `json:"user"`
	}
	rec.DecodeJSON(t, &body)
	if !strings.HasPrefix(body.User.UserID, "HC") || len(body.User.UserID) != 10 {
		t.Errorf("userId = %q, want HC followed by 8 digits", body.User.UserID)
	}
	if body.User.Role != "user" {
		t.Errorf("role = %q, want user", body.User.Role)
	}
	if got := body.User.EndDate.Sub(body.User.StartDate); got != models.DefaultMembershipValidity {
		t.Errorf("membership length = %v, want %v", got, models.DefaultMembershipValidity)
	}
	if _, ok := rec.Cookie(auth.DefaultCookieName); ok {
		t.Error("registration must not sign the user in")
	}

	reloaded, err := employeestore.New(env.db).GetByID(ctx, emp.ID)
	if err != nil {
		t.Fatalf("reload employee: %v", err)
	}
	if len(reloaded.Referrals) != 1 || reloaded.Referrals[0].Hex() != body.User.ID {
		t.Errorf("referrals = %v, want [%s]", reloaded.Referrals, body.User.ID)
	}

	u, err := userstore.New(env.db).GetByUserID(ctx, body.User.UserID)
	if err != nil {
		t.Fatalf("load registered user: %v", err)
	}
	if u.PaymentStatus != models.PaymentPending {
		t.Errorf("payment status = %q, want pending", u.PaymentStatus)
	}
	if u.PaymentAmount != models.DefaultPaymentAmount {
		t.Errorf("payment amount = %v, want %v", u.PaymentAmount, models.DefaultPaymentAmount)
	}
}

func TestHandleRegister_Errors(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateAdmin(ctx, "Root Admin", "9000000001")
	env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	user := func(mobile, employeeID string) map[string]string {
		return map[string]string{
			"role": "user", "fullName": "Asha Devi", "fatherName": "Mohan Lal",
			"mobileNumber": mobile, "password": "secret123", "employeeId": employeeID,
			"profileImage": "data:image/png;base64,iVBORw0KGgo=",
		}
	}

	tests := []struct {
		name   string
		body   map[string]string
		status int
		want   string
	}{
		{"unknown role", map[string]string{"role": "superadmin", "mobileNumber": "9000000011", "password": "secret123"},
			http.StatusBadRequest, "Valid role is required"},
		{"admin registration disabled", map[string]string{"role": "admin", "name": "Eve", "mobileNumber": "9000000011", "password": "secret123"},
			http.StatusForbidden, "Admin registration is disabled"},
		{"employee missing name", map[string]string{"role": "employee", "mobileNumber": "9000000011", "password": "secret123"},
			http.StatusBadRequest, "Name is required"},
		{"user missing fields", map[string]string{"role": "user", "mobileNumber": "9000000011", "password": "secret123"},
			http.StatusBadRequest, "profile image are required"},
		{"user invalid referral", user("9000000011", "EMP999"), http.StatusBadRequest, "Invalid employee ID"},
		{"mobile held by an admin", user("9000000001", "EMP001"), http.StatusBadRequest, "Mobile number already registered"},
		{"mobile held by an employee", user("9000000002", "EMP001"), http.StatusBadRequest, "Mobile number already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(testutil.NewJSONRequest("POST", "/register", tt.body))
			rec.AssertStatus(t, tt.status)
			rec.AssertContains(t, tt.want)
		})
	}
}

func TestHandleRegister_EmployeeAndAdmin(t *testing.T) {
	env := newTestEnv(t, login.Options{AllowAdminRegistration: true})

	rec := env.do(testutil.NewJSONRequest("POST", "/register", map[string]string{
		"role": "employee", "name": "Ravi Kumar", "mobileNumber": "9000000002", "password": "secret123",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"employeeId":"EMP001"`)

	rec = env.do(testutil.NewJSONRequest("POST", "/register", map[string]string{
		"role": "admin", "name": "Second Admin", "mobileNumber": "9000000001", "password": "secret123",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"role":"admin"`)
}

func TestMeAndLogout(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	rec := env.do(testutil.NewJSONRequest("POST", "/login", loginBody("9000000002", testutil.TestPassword)))
	rec.AssertStatus(t, http.StatusOK)
	token, _ := rec.Cookie(auth.DefaultCookieName)

	req := testutil.NewRequest("GET", "/me")
	req.AddCookie(token)
	rec = env.do(req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"employeeId":"EMP001"`)
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("me response leaks password field: %s", rec.Body.String())
	}

	rec = env.do(testutil.NewRequest("GET", "/me"))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, auth.CodeNoToken)

	req = testutil.NewRequest("POST", "/logout")
	req.AddCookie(token)
	rec = env.do(req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Logged out successfully")
	cleared, ok := rec.Cookie(auth.DefaultCookieName)
	if !ok || cleared.MaxAge >= 0 {
		t.Errorf("logout should expire the token cookie, got %+v", cleared)
	}

	n, _ := env.audit.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventLogout})
	if n != 1 {
		t.Errorf("logout events = %d, want 1", n)
	}
}

func TestLogout_WithoutToken(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	rec := env.do(testutil.NewRequest("POST", "/logout"))
	rec.AssertStatus(t, http.StatusOK)
}

func TestServeReferral(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	rec := env.do(testutil.NewRequest("GET", "/referral/EMP001"))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Valid    bool `json:"valid"`
		Employee struct {
			Name       string `json:"name"`
			EmployeeID string `json:"employeeId"`
		} `json:"employee"`
	}
	rec.DecodeJSON(t, &body)
	if !body.Valid || body.Employee.Name != "Ravi Kumar" || body.Employee.EmployeeID != "EMP001" {
		t.Errorf("unexpected referral body: %+v", body)
	}

	rec = env.do(testutil.NewRequest("GET", "/referral/EMP404"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Invalid referral link")
}

func TestServePaymentSettings(t *testing.T) {
	env := newTestEnv(t, login.Options{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := env.do(testutil.NewRequest("GET", "/payment-settings"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Payment settings not configured")

	if _, err := env.handler.Settings.GetOrCreateActive(ctx); err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	rec = env.do(testutil.NewRequest("GET", "/payment-settings"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"amount":500`)
}
