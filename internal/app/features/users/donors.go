package users

import (
	"net/http"

	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeDonors handles GET /donors. Public. Returns active donors matching
// the optional bloodGroup, division, district and upazila filters.
func (h *Handler) ServeDonors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	donors, err := h.Users.ListDonors(ctx, userstore.DonorFilter{
		BloodGroup: query.Get(r, "bloodGroup"),
		Division:   query.Get(r, "division"),
		District:   query.Get(r, "district"),
		Upazila:    query.Get(r, "upazila"),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list donors failed", err)
		return
	}
	respond.OK(w, donors)
}
