package users

import (
	"net/http"

	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeAdminUpdate handles PATCH /users/{user} (admin). Admins may change
// role and status in addition to profile fields.
func (h *Handler) ServeAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "user")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin update: bad id", err, "Invalid user id")
		return
	}

	var in userstore.AdminUpdate
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "admin update: bad body", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "admin update: invalid input", res, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Users.UpdateByID(ctx, id, in)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin update failed", err)
		return
	}

	if res.MatchedCount > 0 {
		if in.Role != nil || in.Status != nil {
			sub, _ := auth.CurrentSubject(r)
			h.Log.Info("user access changed",
				zap.String("admin", sub.Email),
				zap.String("user_id", id.Hex()),
				zap.Stringp("role", in.Role),
				zap.Stringp("status", in.Status))
		}
		h.Audit.UserUpdated(ctx, r, id, in.Role, in.Status, profileFields(in.Profile))
	}
	respond.OK(w, res)
}

// profileFields names the profile fields present in p.
func profileFields(p userstore.Profile) []string {
	var out []string
	add := func(name string, v *string) {
		if v != nil {
			out = append(out, name)
		}
	}
	add("name", p.Name)
	add("avatar", p.Avatar)
	add("bloodGroup", p.BloodGroup)
	add("division", p.Division)
	add("district", p.District)
	add("upazila", p.Upazila)
	return out
}
