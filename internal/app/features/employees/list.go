// internal/app/features/employees/list.go
package employees

import (
	"context"
	"net/http"

	employeestore "github.com/dalemusser/healthcredit/internal/app/store/employees"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type listResponse struct {
	Employees  []models.Employee `json:"employees"`
	Pagination paging.Meta       `json:"pagination"`
}

// ServeList handles GET /api/admin/employees?page=&limit=&search=&sortBy=&sortOrder=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)
	q := employeestore.ListQuery{
		Search: normalize.QueryParam(query.Get(r, "search")),
		Page:   page,
		Sort:   paging.ParseSort(r, employeestore.SortFields, "created_at"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Employees.List(ctx, q)
	if err != nil {
		h.Log.Error("list employees failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Employees: list, Pagination: page.MetaFor(total)})
}
