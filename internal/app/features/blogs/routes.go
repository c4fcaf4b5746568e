// internal/app/features/blogs/routes.go
package blogs

import (
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /blogs. Listing is public; reading a
// single post needs an identity; writes are role gated.
func Routes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(g.RequireIdentity)
		r.Get("/{id}", h.ServeGet)
		r.With(g.RequireRole(authz.Admin, authz.Volunteer)).Post("/", h.ServeCreate)
		r.With(g.RequireRole(authz.Admin)).Patch("/{id}/{status}", h.ServeSetStatus)
		r.With(g.RequireRole(authz.Admin)).Delete("/{id}", h.ServeDelete)
	})
	return r
}
