// internal/app/features/payments/handler.go
package payments

import (
	"math"
	"net/http"

	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves payment-intent creation.
type Handler struct {
	Gateway Gateway
	Log     *zap.Logger
}

func NewHandler(gw Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Gateway: gw,
		Log:     logger,
	}
}

type intentRequest struct {
	Amount float64 `json:"amount"`
}

// ServeCreateIntent handles POST /create-payment-intent.
//
//	{"amount": 12.50}  ->  200 {"clientSecret":"pi_..._secret_..."}
//
// amount is in dollars and is charged in cents, USD, card only.
func (h *Handler) ServeCreateIntent(w http.ResponseWriter, r *http.Request) {
	var in intentRequest
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxJSONBody); err != nil || in.Amount <= 0 {
		respond.Message(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	cents := int64(math.Round(in.Amount * 100))
	if cents < 1 {
		respond.Message(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if h.Gateway == nil {
		h.Log.Error("payment intent requested but no payment gateway is configured")
		respond.Error(w, http.StatusInternalServerError, "Failed to create payment intent")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	secret, err := h.Gateway.CreatePaymentIntent(ctx, cents)
	if err != nil {
		h.Log.Error("stripe payment intent failed", zap.Int64("cents", cents), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to create payment intent")
		return
	}
	respond.OK(w, map[string]string{"clientSecret": secret})
}
