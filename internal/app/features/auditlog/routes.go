// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /audit (admin only).
func Routes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(g.RequireIdentity)
	r.Use(g.RequireRole(authz.Admin))
	r.Get("/", h.ServeList)
	return r
}
