// internal/app/features/payments/routes.go
package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers POST /create-payment-intent. guard, when non-nil,
// wraps the endpoint (rate limiting).
func MountRoutes(r chi.Router, h *Handler, guard func(http.Handler) http.Handler) {
	if guard != nil {
		r.With(guard).Post("/create-payment-intent", h.ServeCreateIntent)
		return
	}
	r.Post("/create-payment-intent", h.ServeCreateIntent)
}
