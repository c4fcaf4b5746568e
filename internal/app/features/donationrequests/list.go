package donationrequests

import (
	"net/http"

	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Donations []models.DonationRequest `json:"donations"`
	Total     int64                    `json:"total"`
	Pages     int64                    `json:"pages"`
}

// ServeList handles GET /donation-requests?email&status&page&limit.
// email filters by requester.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := requeststore.ListFilter{
		RequesterEmail: query.Get(r, "email"),
		Status:         query.Get(r, "status"),
	}
	p := paging.Parse(r, paging.DefaultLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Requests.List(ctx, f, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list donation requests failed", err)
		return
	}
	respond.OK(w, listResponse{Donations: res.Items, Total: res.Total, Pages: res.Pages})
}

// ServeGet handles GET /donation-requests/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "get donation request: bad id", err, "Invalid request id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Requests.Get(ctx, id)
	if err != nil {
		h.ErrLog.Handle(w, r, "get donation request failed", err)
		return
	}
	respond.OK(w, req)
}
