package employees_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/healthcredit/internal/app/features/employees"
	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	mobilestore "github.com/dalemusser/healthcredit/internal/app/store/mobiles"
	paymentsettingsstore "github.com/dalemusser/healthcredit/internal/app/store/paymentsettings"
	"github.com/dalemusser/healthcredit/internal/app/system/auditlog"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
	"github.com/dalemusser/healthcredit/internal/app/system/registration"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/healthcredit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*employees.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	settings := paymentsettingsstore.New(db, models.DefaultPaymentAmount)
	reg := registration.New(db, settings, registration.Config{BcryptCost: bcrypt.MinCost}, logger)
	al := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	return employees.NewHandler(db, reg, al, logger), db
}

func TestServeList(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Root Admin", "9000000001")
	for i := 1; i <= 12; i++ {
		fx.CreateEmployee(ctx, fmt.Sprintf("Employee %02d", i), fmt.Sprintf("90000001%02d", i), fmt.Sprintf("EMP%03d", i))
	}

	tests := []struct {
		name      string
		target    string
		wantCount int
		wantMeta  paging.Meta
		wantFirst string
	}{
		{"default page", "/", 10, paging.Meta{Current: 1, PageSize: 10, Total: 12, TotalPages: 2}, "EMP012"},
		{"second page", "/?page=2", 2, paging.Meta{Current: 2, PageSize: 10, Total: 12, TotalPages: 2}, "EMP002"},
		{"search by code", "/?search=emp007", 1, paging.Meta{Current: 1, PageSize: 10, Total: 1, TotalPages: 1}, "EMP007"},
		{"sort by code asc", "/?sortBy=employeeId&sortOrder=asc&limit=5", 5, paging.Meta{Current: 1, PageSize: 5, Total: 12, TotalPages: 3}, "EMP001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeList(rec, testutil.AsAdmin(testutil.NewRequest("GET", tt.target), admin))
			rec.AssertStatus(t, http.StatusOK)

			var body struct {
				Employees  []models.Employee `json:"employees"`
				Pagination paging.Meta       `json:"pagination"`
			}
			rec.DecodeJSON(t, &body)
			if len(body.Employees) != tt.wantCount {
				t.Fatalf("got %d employees, want %d", len(body.Employees), tt.wantCount)
			}
			if body.Pagination != tt.wantMeta {
				t.Errorf("pagination = %+v, want %+v", body.Pagination, tt.wantMeta)
			}
			if body.Employees[0].EmployeeID != tt.wantFirst {
				t.Errorf("first = %s, want %s", body.Employees[0].EmployeeID, tt.wantFirst)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Root Admin", "9000000001")

	rec := testutil.NewRecorder()
	req := testutil.NewJSONRequest("POST", "/", map[string]string{
		"name": "Ravi Kumar", "mobileNumber": "9000000002", "password": "secret123",
	})
	h.HandleCreate(rec, testutil.AsAdmin(req, admin))
	rec.AssertStatus(t, http.StatusCreated)

	var emp models.Employee
	rec.DecodeJSON(t, &emp)
	if emp.EmployeeID != "EMP001" {
		t.Errorf("employeeId = %q, want EMP001", emp.EmployeeID)
	}
	if emp.Role != models.RoleEmployee {
		t.Errorf("role = %q, want employee", emp.Role)
	}

	n, _ := audit.New(db).CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventEmployeeCreated})
	if n != 1 {
		t.Errorf("employee_created events = %d, want 1", n)
	}

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"admin's mobile", map[string]string{"name": "Dup", "mobileNumber": "9000000001", "password": "secret123"}, "Mobile number already registered"},
		{"taken code", map[string]string{"name": "Dup", "mobileNumber": "9000000003", "password": "secret123", "employeeId": "EMP001"}, "Employee ID already exists"},
		{"missing name", map[string]string{"mobileNumber": "9000000004", "password": "secret123"}, "Name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.AsAdmin(testutil.NewJSONRequest("POST", "/", tt.body), admin))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.want)
		})
	}
}

func TestHandleDelete(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Root Admin", "9000000001")
	emp := fx.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")
	usr := fx.CreateUser(ctx, "Asha Devi", "9000000003", "EMP001", "HC00000001")

	tests := []struct {
		name   string
		id     string
		status int
		want   string
	}{
		{"bad id", "not-an-id", http.StatusBadRequest, "Invalid employee ID"},
		{"unknown", primitive.NewObjectID().Hex(), http.StatusNotFound, "Employee not found"},
		{"existing", emp.ID.Hex(), http.StatusOK, "Employee deleted successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithChiURLParam(testutil.NewRequest("DELETE", "/"+tt.id), "id", tt.id)
			rec := testutil.NewRecorder()
			h.HandleDelete(rec, testutil.AsAdmin(req, admin))
			rec.AssertStatus(t, tt.status)
			rec.AssertContains(t, tt.want)
		})
	}

	taken, err := mobilestore.New(db).Exists(ctx, emp.MobileNumber)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if taken {
		t.Error("deleted employee's mobile number should be released")
	}
	if n, _ := db.Collection("users").CountDocuments(ctx, map[string]any{"_id": usr.ID}); n != 1 {
		t.Error("referred user should survive employee deletion")
	}
}
