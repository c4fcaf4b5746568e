// internal/app/features/donationrequests/routes.go
package donationrequests

import (
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /donation-requests.
func Routes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(g.RequireIdentity)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{id}", h.ServeGet)
	r.Patch("/{id}", h.ServePatch)
	r.Delete("/{id}", h.ServeDelete)

	return r
}

// StatusRoutes returns the router mounted at /donation, which carries the
// single-field status overwrite.
func StatusRoutes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(g.RequireIdentity)
	r.Patch("/{id}", h.ServeSetStatus)
	return r
}
