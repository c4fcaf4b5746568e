package donationrequests

import (
	"net/http"
	"strings"

	"github.com/dalemusser/redaid/internal/app/coordinator"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/status"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
)

// ServeCreate handles POST /donation-requests. The requester is always the
// verified subject; requesterEmail and status in the body are ignored.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	sub, ok := auth.CurrentSubject(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var in coordinator.CreateInput
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create donation request: bad body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Requests.Create(ctx, sub.Email, in)
	if err != nil {
		h.ErrLog.Handle(w, r, "create donation request failed", err)
		return
	}
	respond.OK(w, res)
}

// ServePatch handles PATCH /donation-requests/{id}. A body carrying
// donorEmail is an acceptance; send an Idempotency-Key header to make
// retries safe.
func (h *Handler) ServePatch(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "patch donation request: bad id", err, "Invalid request id")
		return
	}

	var p coordinator.Patch
	if err := formutil.DecodeJSON(w, r, &p, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "patch donation request: bad body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	out, err := h.Requests.PartialUpdate(ctx, id, p, strings.TrimSpace(r.Header.Get(IdempotencyHeader)))
	if err != nil {
		h.ErrLog.Handle(w, r, "patch donation request failed", err)
		return
	}
	if p.DonorEmail != nil && strings.TrimSpace(*p.DonorEmail) != "" && !out.Replayed && out.MatchedCount > 0 {
		h.Audit.RequestAccepted(ctx, r, id, strings.TrimSpace(*p.DonorEmail))
	}
	respond.OK(w, out)
}

type statusBody struct {
	Status string `json:"status"`
}

// ServeSetStatus handles PATCH /donation/{id} with body {"status": "..."}.
func (h *Handler) ServeSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "set status: bad id", err, "Invalid request id")
		return
	}

	var body statusBody
	if err := formutil.DecodeJSON(w, r, &body, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "set status: bad body", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Requests.SetStatus(ctx, id, body.Status)
	if err != nil {
		h.ErrLog.Handle(w, r, "set status failed", err)
		return
	}
	if st, ok := status.ParseRequest(body.Status); ok && res.ModifiedCount > 0 {
		h.Audit.RequestStatusChanged(ctx, r, id, st.String())
	}
	respond.OK(w, res)
}

// ServeDelete handles DELETE /donation-requests/{id}. A missing id answers
// deletedCount 0.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "delete donation request: bad id", err, "Invalid request id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Requests.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete donation request failed", err)
		return
	}
	if res.DeletedCount > 0 {
		h.Audit.RequestDeleted(ctx, r, id)
	}
	respond.OK(w, res)
}
