// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/healthcredit/internal/app/store/users"
	"github.com/dalemusser/healthcredit/internal/app/system/normalize"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
	"github.com/dalemusser/healthcredit/internal/app/system/respond"
	"github.com/dalemusser/healthcredit/internal/app/system/timeouts"
	"github.com/dalemusser/healthcredit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type listResponse struct {
	Users      []models.User `json:"users"`
	Pagination paging.Meta   `json:"pagination"`
}

// ServeList handles GET /api/admin/users?page=&limit=&search=&sortBy=&sortOrder=.
// A search of digits only matches mobile number prefixes.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)
	q := userstore.ListQuery{
		Search: normalize.QueryParam(query.Get(r, "search")),
		Page:   page,
		Sort:   paging.ParseSort(r, userstore.SortFields, "created_at"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Users.List(ctx, q)
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Users: list, Pagination: page.MetaFor(total)})
}
