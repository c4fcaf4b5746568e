package users

import (
	"net/http"

	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Pages int64         `json:"pages"`
}

// ServeList handles GET /users?status&page&limit (admin). The caller's own
// record is left off the page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.CurrentSubject(r)
	p := paging.Parse(r, paging.DefaultLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Users.List(ctx, query.Get(r, "status"), sub.Email, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err)
		return
	}
	respond.OK(w, listResponse{Users: res.Items, Total: res.Total, Pages: res.Pages})
}
