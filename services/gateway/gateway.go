package gateway

import "context"

// IntentParams asks the gateway for a payment intent. Amount is in minor units.
type IntentParams struct {
	Amount         int64
	Currency       string
	CustomerHandle string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentGateway is the external payment processor. Every failure comes back as a
// *models.GatewayError.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (string, error)
	// Refund refunds the intent, fully when amount is nil. It returns the refund id.
	Refund(ctx context.Context, intentID string, amount *int64) (string, error)
}
