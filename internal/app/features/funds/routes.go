// internal/app/features/funds/routes.go
package funds

import (
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /funds.
func Routes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(g.RequireIdentity)
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	return r
}
