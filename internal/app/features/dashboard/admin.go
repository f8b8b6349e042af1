// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentWindow  = 30 * 24 * time.Hour
	topEmployeesN = 5
	monthlyStatsN = 12
)

type overview struct {
	TotalEmployees  int64 `json:"totalEmployees"`
	TotalUsers      int64 `json:"totalUsers"`
	ActiveEmployees int64 `json:"activeEmployees"`
	RecentUsers     int64 `json:"recentUsers"`
}

type adminDashboard struct {
	Overview     overview                      `json:"overview"`
	TopEmployees []employeestore.ReferralCount `json:"topEmployees"`
	MonthlyStats []userstore.MonthCount        `json:"monthlyStats"`
}

// ServeAdminDashboard handles GET /api/admin/dashboard. The six aggregates
// run concurrently; any failure fails the whole response.
func (h *Handler) ServeAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var out adminDashboard
	since := time.Now().UTC().Add(-recentWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Overview.TotalEmployees, err = h.Employees.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Overview.TotalUsers, err = h.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Overview.ActiveEmployees, err = h.Employees.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Overview.RecentUsers, err = h.Users.CountSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.TopEmployees, err = h.Employees.TopByReferrals(gctx, topEmployeesN)
		return err
	})
	g.Go(func() (err error) {
		out.MonthlyStats, err = h.Users.MonthlyRegistrations(gctx, monthlyStatsN)
		return err
	})

	if err := g.Wait(); err != nil {
		h.Log.Error("admin dashboard aggregates failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
