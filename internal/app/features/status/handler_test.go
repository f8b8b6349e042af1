package status_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/features/status"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/healthcredit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func TestServe_Connected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.NewFixtures(t, db).CreateAdmin(ctx, "Root Admin", "9000000001")

	h := status.NewHandler(db.Client(), time.Now().Add(-3*time.Hour-time.Minute), zap.NewNop())
	rec := testutil.NewRecorder()
	h.Serve(rec, testutil.AsAdmin(testutil.NewRequest("GET", "/"), admin))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Uptime   string `json:"uptime"`
		Memory   struct {
			Used  string `json:"used"`
			Total string `json:"total"`
		} `json:"memory"`
		Timestamp time.Time `json:"timestamp"`
	}
	rec.DecodeJSON(t, &body)
	if body.Status != "healthy" || body.Database != "connected" {
		t.Errorf("status/database = %s/%s, want healthy/connected", body.Status, body.Database)
	}
	if body.Uptime != "3 hours" {
		t.Errorf("uptime = %q, want %q", body.Uptime, "3 hours")
	}
	if !strings.HasSuffix(body.Memory.Used, " MB") || !strings.HasSuffix(body.Memory.Total, " MB") {
		t.Errorf("memory = %+v, want MB figures", body.Memory)
	}
	if time.Since(body.Timestamp) > time.Minute {
		t.Errorf("timestamp %v is stale", body.Timestamp)
	}
}

func TestServe_Disconnected(t *testing.T) {
	client, err := mongo.NewClient(options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	h := status.NewHandler(client, time.Now(), zap.NewNop())
	rec := testutil.NewRecorder()
	h.Serve(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"database":"disconnected"`)
	rec.AssertContains(t, `"status":"degraded"`)
}

func TestRoutes_AdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	rv := testutil.NewResolver(t, db)
	emp := fx.CreateEmployee(ctx, "Ravi Kumar", "9000000002", "EMP001")

	router := status.Routes(status.NewHandler(db.Client(), time.Now(), zap.NewNop()), rv)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithToken(t, rv, testutil.NewRequest("GET", "/"), emp.ID, models.RoleEmployee))
	rec.AssertStatus(t, http.StatusForbidden)
}
