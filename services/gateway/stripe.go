package gateway

import (
	"context"
	"time"

	"mentorly/models"
	"mentorly/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway implements PaymentGateway with the Stripe API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// track times a gateway call; call the returned func deferred with the named error.
func track(op string) func(*error) {
	started := time.Now()
	return func(err *error) {
		status := "ok"
		if *err != nil {
			status = "error"
		}
		utils.ExternalCallDuration.WithLabelValues("gateway", op, status).Observe(time.Since(started).Seconds())
	}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (handle string, err error) {
	defer track("create_customer")(&err)

	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", &models.GatewayError{Op: "create customer", Err: err}
	}
	return c.ID, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, p IntentParams) (intent *Intent, err error) {
	defer track("create_intent")(&err)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if p.CustomerHandle != "" {
		params.Customer = stripe.String(p.CustomerHandle)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, &models.GatewayError{Op: "create intent", Err: err}
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (status string, err error) {
	defer track("retrieve_intent")(&err)

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", &models.GatewayError{Op: "retrieve intent", Err: err}
	}
	return string(pi.Status), nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount *int64) (refundID string, err error) {
	defer track("refund")(&err)

	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(*amount)
	}
	r, err := g.api.Refunds.New(params)
	if err != nil {
		return "", &models.GatewayError{Op: "refund", Err: err}
	}
	return r.ID, nil
}
