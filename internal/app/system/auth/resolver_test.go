package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeStore holds principals per collection and counts lookups per role.
type fakeStore struct {
	admins    map[primitive.ObjectID]*models.Admin
	employees map[primitive.ObjectID]*models.Employee
	users     map[primitive.ObjectID]*models.User
	calls     map[models.Role]int
	fail      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:    map[primitive.ObjectID]*models.Admin{},
		employees: map[primitive.ObjectID]*models.Employee{},
		users:     map[primitive.ObjectID]*models.User{},
		calls:     map[models.Role]int{},
	}
}

func (f *fakeStore) loaders() Loaders {
	return Loaders{
		Admin: func(_ context.Context, id primitive.ObjectID) (*Principal, error) {
			f.calls[models.RoleAdmin]++
			if f.fail != nil {
				return nil, f.fail
			}
			a, ok := f.admins[id]
			if !ok {
				return nil, ErrPrincipalNotFound
			}
			cp := *a
			return AdminPrincipal(&cp), nil
		},
		Employee: func(_ context.Context, id primitive.ObjectID) (*Principal, error) {
			f.calls[models.RoleEmployee]++
			if f.fail != nil {
				return nil, f.fail
			}
			e, ok := f.employees[id]
			if !ok {
				return nil, ErrPrincipalNotFound
			}
			cp := *e
			return EmployeePrincipal(&cp), nil
		},
		User: func(_ context.Context, id primitive.ObjectID) (*Principal, error) {
			f.calls[models.RoleUser]++
			if f.fail != nil {
				return nil, f.fail
			}
			u, ok := f.users[id]
			if !ok {
				return nil, ErrPrincipalNotFound
			}
			cp := *u
			return UserPrincipal(&cp), nil
		},
	}
}

func (f *fakeStore) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newTestResolver(t *testing.T, fs *fakeStore) *Resolver {
	t.Helper()
	rv, err := NewResolver(newTestIssuer(t), CookieConfig{}, fs.loaders(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return rv
}

func TestNewResolver_RequiresEveryLoader(t *testing.T) {
	full := newFakeStore().loaders()

	tests := []struct {
		name    string
		loaders Loaders
	}{
		{"missing admin", Loaders{Employee: full.Employee, User: full.User}},
		{"missing employee", Loaders{Admin: full.Admin, User: full.User}},
		{"missing user", Loaders{Admin: full.Admin, Employee: full.Employee}},
		{"empty", Loaders{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewResolver(newTestIssuer(t), CookieConfig{}, tt.loaders, zap.NewNop()); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := NewResolver(nil, CookieConfig{}, full, zap.NewNop()); err == nil {
		t.Error("expected error for nil issuer")
	}
}

func TestResolve_EachRole(t *testing.T) {
	fs := newFakeStore()
	adminID, empID, userID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	fs.admins[adminID] = &models.Admin{ID: adminID, Name: "Root", MobileNumber: "9000000001", Role: models.RoleAdmin}
	fs.employees[empID] = &models.Employee{ID: empID, Name: "Asha", MobileNumber: "9000000002", EmployeeID: "EMP001", Role: models.RoleEmployee}
	fs.users[userID] = &models.User{ID: userID, FullName: "Ravi Kumar", MobileNumber: "9000000003", EmployeeID: "EMP001", Role: models.RoleUser}
	rv := newTestResolver(t, fs)

	tests := []struct {
		role  models.Role
		id    primitive.ObjectID
		name  string
		empID string
	}{
		{models.RoleAdmin, adminID, "Root", ""},
		{models.RoleEmployee, empID, "Asha", "EMP001"},
		{models.RoleUser, userID, "Ravi Kumar", "EMP001"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			raw, _ := rv.Tokens().Issue(tt.id.Hex(), tt.role)
			p, err := rv.Resolve(context.Background(), raw)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if p.Role() != tt.role || p.Kind() != tt.role {
				t.Errorf("role = %q kind = %q, want %q", p.Role(), p.Kind(), tt.role)
			}
			if p.ID() != tt.id {
				t.Errorf("ID = %s, want %s", p.ID().Hex(), tt.id.Hex())
			}
			if p.Name() != tt.name {
				t.Errorf("Name = %q, want %q", p.Name(), tt.name)
			}
			if p.EmployeeID() != tt.empID {
				t.Errorf("EmployeeID = %q, want %q", p.EmployeeID(), tt.empID)
			}
		})
	}
}

func TestResolve_NoFallbackAcrossCollections(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	// The id exists as an employee and an admin, but the claim says user.
	fs.employees[id] = &models.Employee{ID: id, Role: models.RoleEmployee}
	fs.admins[id] = &models.Admin{ID: id, Role: models.RoleAdmin}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleUser)
	_, err := rv.Resolve(context.Background(), raw)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
	if fs.calls[models.RoleUser] != 1 {
		t.Errorf("user loader calls = %d, want 1", fs.calls[models.RoleUser])
	}
	if fs.calls[models.RoleAdmin] != 0 || fs.calls[models.RoleEmployee] != 0 {
		t.Errorf("other collections consulted: %v", fs.calls)
	}
}

func TestResolve_NoCredentialSkipsStorage(t *testing.T) {
	fs := newFakeStore()
	rv := newTestResolver(t, fs)

	_, err := rv.Resolve(context.Background(), "")
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
	if fs.totalCalls() != 0 {
		t.Errorf("loader called %d times", fs.totalCalls())
	}
}

func TestResolve_ExpiredSkipsStorage(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.users[id] = &models.User{ID: id, Role: models.RoleUser}
	rv := newTestResolver(t, fs)

	rv.tokens.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleUser)
	rv.tokens.now = time.Now

	_, err := rv.Resolve(context.Background(), raw)
	if !errors.Is(err, ErrExpiredCredential) {
		t.Fatalf("err = %v, want ErrExpiredCredential", err)
	}
	if fs.totalCalls() != 0 {
		t.Errorf("loader called %d times", fs.totalCalls())
	}
}

func TestResolve_MalformedID(t *testing.T) {
	rv := newTestResolver(t, newFakeStore())
	raw, _ := rv.Tokens().Issue("E1", models.RoleEmployee)
	if _, err := rv.Resolve(context.Background(), raw); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestResolve_StorageErrorIsNotAuthFailure(t *testing.T) {
	fs := newFakeStore()
	fs.fail = errors.New("connection reset")
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(primitive.NewObjectID().Hex(), models.RoleAdmin)
	_, err := rv.Resolve(context.Background(), raw)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sentinel := range []error{ErrNoCredential, ErrExpiredCredential, ErrInvalidCredential} {
		if errors.Is(err, sentinel) {
			t.Errorf("storage error reported as %v", sentinel)
		}
	}
	if !errors.Is(err, fs.fail) {
		t.Errorf("storage error not wrapped: %v", err)
	}
}

func TestResolve_BackfillsMissingRole(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.employees[id] = &models.Employee{ID: id, Name: "Legacy"}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleEmployee)
	p, err := rv.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Role() != models.RoleEmployee {
		t.Errorf("Role = %q, want employee", p.Role())
	}
}

func TestResolve_StoredRoleMismatch(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.users[id] = &models.User{ID: id, Role: models.RoleAdmin}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleUser)
	if _, err := rv.Resolve(context.Background(), raw); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func signRaw(t *testing.T, id string, role models.Role) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestResolve_MixedCaseRoleClaim(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.admins[id] = &models.Admin{ID: id, Name: "Root", Role: models.RoleAdmin}
	rv := newTestResolver(t, fs)

	p, err := rv.Resolve(context.Background(), signRaw(t, id.Hex(), "Admin"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Kind() != models.RoleAdmin || p.Role() != models.RoleAdmin {
		t.Errorf("kind = %q role = %q, want admin", p.Kind(), p.Role())
	}
	if fs.calls[models.RoleAdmin] != 1 || fs.totalCalls() != 1 {
		t.Errorf("loader calls = %v, want one admin lookup", fs.calls)
	}
}

func TestResolve_MixedCaseStoredRole(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.admins[id] = &models.Admin{ID: id, Name: "Legacy", Role: "Admin"}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleAdmin)
	p, err := rv.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Role() != models.RoleAdmin {
		t.Errorf("Role = %q, want admin", p.Role())
	}
}

func TestResolve_MissingLoaderIsInvalid(t *testing.T) {
	fs := newFakeStore()
	full := fs.loaders()
	rv := &Resolver{
		tokens:  newTestIssuer(t),
		loaders: Loaders{Employee: full.Employee, User: full.User},
		log:     zap.NewNop(),
	}

	raw, _ := rv.Tokens().Issue(primitive.NewObjectID().Hex(), models.RoleAdmin)
	if _, err := rv.Resolve(context.Background(), raw); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestAuthenticate_MixedCaseRoleAuthenticates(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.users[id] = &models.User{ID: id, FullName: "Ravi", Role: models.RoleUser}
	rv := newTestResolver(t, fs)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signRaw(t, id.Hex(), "USER"))
	rec := serve(rv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.users[id] = &models.User{ID: id, FullName: "Ravi", Role: models.RoleUser}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleUser)
	a, err := rv.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	b, err := rv.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if a.ID() != b.ID() || a.Role() != b.Role() {
		t.Errorf("resolutions differ: %v/%v vs %v/%v", a.ID(), a.Role(), b.ID(), b.Role())
	}
	if fs.calls[models.RoleUser] != 2 {
		t.Errorf("expected a reload per resolution, got %d", fs.calls[models.RoleUser])
	}
}

func serve(rv *Resolver, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rv.Authenticate(h).ServeHTTP(rec, req)
	return rec
}

func clearedCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCookieName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Code
}

func TestAuthenticate_Rejections(t *testing.T) {
	fs := newFakeStore()
	rv := newTestResolver(t, fs)

	missing, _ := rv.Tokens().Issue(primitive.NewObjectID().Hex(), models.RoleUser)
	rv.tokens.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, _ := rv.Tokens().Issue(primitive.NewObjectID().Hex(), models.RoleUser)
	rv.tokens.now = time.Now

	tests := []struct {
		name   string
		cookie string
		code   string
	}{
		{"no credential", "", CodeNoToken},
		{"expired", expired, CodeTokenExpired},
		{"garbage", "garbage", CodeInvalidToken},
		{"principal missing", missing, CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			rec := serve(rv, h, req)

			if called {
				t.Error("handler ran for rejected request")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if !clearedCookie(rec) {
				t.Error("expected credential cookie to be cleared")
			}
			if code := decodeCode(t, rec); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestAuthenticate_StorageErrorKeepsCookie(t *testing.T) {
	fs := newFakeStore()
	fs.fail = errors.New("server selection timeout")
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(primitive.NewObjectID().Hex(), models.RoleEmployee)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := serve(rv, http.NotFoundHandler(), req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie must not be touched on storage errors")
	}
}

func TestAuthenticate_AttachesPrincipal(t *testing.T) {
	fs := newFakeStore()
	id := primitive.NewObjectID()
	fs.employees[id] = &models.Employee{ID: id, Name: "Asha", EmployeeID: "EMP001", Role: models.RoleEmployee}
	rv := newTestResolver(t, fs)

	raw, _ := rv.Tokens().Issue(id.Hex(), models.RoleEmployee)
	var got *Principal
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentPrincipal(r)
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: raw})
	rec := serve(rv, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID() != id || got.Role() != models.RoleEmployee {
		t.Fatalf("principal = %+v", got)
	}
}

func TestPrincipal_MarshalJSONOmitsPassword(t *testing.T) {
	p := UserPrincipal(&models.User{
		ID:           primitive.NewObjectID(),
		FullName:     "Ravi",
		PasswordHash: "$2a$12$secret",
		Role:         models.RoleUser,
	})
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if _, ok := m["passwordHash"]; ok {
		t.Error("password hash serialized")
	}
	if _, ok := m["password_hash"]; ok {
		t.Error("password hash serialized")
	}
	if m["fullName"] != "Ravi" {
		t.Errorf("fullName = %v", m["fullName"])
	}
}
