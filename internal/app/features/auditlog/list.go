// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /api/admin/audit?category=&event_type=&start_date=&end_date=&page=.
// Dates are YYYY-MM-DD in UTC; end_date includes the whole day.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	category := normalize.QueryParam(query.Get(r, "category"))
	eventType := normalize.QueryParam(query.Get(r, "event_type"))
	startDate := normalize.QueryParam(query.Get(r, "start_date"))
	endDate := normalize.QueryParam(query.Get(r, "end_date"))

	page := paging.Page{Number: 1, Limit: pageSize}
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page.Number = p
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     pageSize,
		Offset:    page.Skip(),
	}
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartTime = &t
		}
	}
	if endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.ServerError(w)
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		respond.ServerError(w)
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Events: events,
		Filters: filters{
			Category:   category,
			EventType:  eventType,
			StartDate:  startDate,
			EndDate:    endDate,
			Categories: allCategories(),
			EventTypes: eventTypesForCategory(category),
		},
		Pagination: page.MetaFor(total),
	})
}
