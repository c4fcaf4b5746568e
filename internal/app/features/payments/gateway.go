// internal/app/features/payments/gateway.go
package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Gateway creates card payment intents and returns their client secret.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, cents int64) (clientSecret string, err error)
}

// StripeGateway is the Stripe implementation of Gateway. Each intent is
// sent with a fresh idempotency key so Stripe's own network retries cannot
// create two intents.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway for secretKey.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, cents int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
