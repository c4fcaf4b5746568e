// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /users. register guards the public
// registration endpoint (rate limiting); nil leaves it unguarded.
//
// {user} is an email on the self-service routes and an ObjectID on the
// admin PATCH.
func Routes(h *Handler, g *auth.Gate, register func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	if register != nil {
		r.With(register).Post("/", h.ServeRegister)
	} else {
		r.Post("/", h.ServeRegister)
	}

	r.Group(func(r chi.Router) {
		r.Use(g.RequireIdentity)

		r.With(g.RequireRole(authz.Admin)).Get("/", h.ServeList)
		r.With(g.RequireRole(authz.Admin)).Patch("/{user}", h.ServeAdminUpdate)

		r.Get("/{user}", h.ServeGet)
		r.With(g.RequireSelf(auth.FromPath("user"))).Get("/{user}/role", h.ServeRole)
		r.With(g.RequireSelf(auth.FromPath("user"))).Put("/{user}", h.ServeUpdateProfile)
	})

	return r
}

// MountDonorRoutes registers the public GET /donors search.
func MountDonorRoutes(r chi.Router, h *Handler) {
	r.Get("/donors", h.ServeDonors)
}
