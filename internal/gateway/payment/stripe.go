package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/matthieukhl/axoshard/internal/types"
)

// intentAPI is the slice of the Stripe client this adapter calls.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeGateway struct {
	intents intentAPI
}

func NewStripeGateway(apiKey string) (*StripeGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe secret key not found in config or environment")
	}
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents}, nil
}

// CreateIntent makes one call to the processor. There are no retries.
func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*types.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, gatewayError(err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*types.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(id, params)
	if err != nil {
		return nil, gatewayError(err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func fromStripe(pi *stripe.PaymentIntent) *types.PaymentIntent {
	return &types.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

// Compile-time interface check
var _ types.PaymentGateway = (*StripeGateway)(nil)
