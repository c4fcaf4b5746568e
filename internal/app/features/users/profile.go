package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeRole handles GET /users/{user}/role (self only).
//
//	200 {"role":"donor"}
//	404 {"role":"user","message":"User not found"}
func (h *Handler) ServeRole(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "user")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, found, err := h.Users.RoleOf(ctx, email)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "role lookup failed", err)
		return
	}
	if !found {
		respond.JSON(w, http.StatusNotFound, map[string]string{
			"role":    authz.User.String(),
			"message": "User not found",
		})
		return
	}
	respond.OK(w, map[string]string{"role": role.String()})
}

// ServeGet handles GET /users/{user}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "user")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get user failed", err)
		return
	}
	respond.OK(w, u)
}

// registration is the POST /users body. Role and status are not part of
// it; new records always start as active donors.
type registration struct {
	Email string `json:"email" validate:"required,email,max=254"`
	userstore.Profile
}

// ServeRegister handles POST /users. Signing in again with an existing
// email leaves the stored record untouched.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var in registration
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: bad body", err, err.Error())
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "register: invalid input", res, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Users.Register(ctx, in.Email, in.Profile)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register user failed", err)
		return
	}
	if res.UpsertedCount > 0 {
		h.Log.Info("user registered", zap.String("email", in.Email))
	}
	respond.OK(w, res)
}

// ServeUpdateProfile handles PUT /users/{user} (self only). Only profile
// fields are accepted; role and status in the body are ignored.
func (h *Handler) ServeUpdateProfile(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "user")

	var p userstore.Profile
	if err := formutil.DecodeJSON(w, r, &p, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "update profile: bad body", err, err.Error())
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "update profile: invalid input", res, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Users.UpdateProfile(ctx, email, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update profile failed", err)
		return
	}
	respond.OK(w, res)
}
