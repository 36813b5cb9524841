package gateway

import (
	"encoding/json"
	"fmt"

	"mentorly/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// ParseStripeEvent verifies the Stripe signature and extracts the settlement outcome.
// Events that are not about intent settlement return a nil event and no error.
func ParseStripeEvent(payload []byte, signature, secret string) (*models.SettlementEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &models.ValidationError{Message: fmt.Sprintf("invalid webhook signature: %v", err)}
	}
	return settlementFromEvent(event)
}

func settlementFromEvent(event stripe.Event) (*models.SettlementEvent, error) {
	typ := string(event.Type)
	if typ != EventIntentSucceeded && typ != EventIntentFailed {
		return nil, nil
	}
	if event.Data == nil {
		return nil, &models.ValidationError{Message: "webhook event has no data"}
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, &models.ValidationError{Message: fmt.Sprintf("decode payment intent: %v", err)}
	}

	out := &models.SettlementEvent{
		EventID:   event.ID,
		EventType: typ,
		IntentID:  pi.ID,
		Succeeded: typ == EventIntentSucceeded,
	}
	if e := pi.LastPaymentError; e != nil && !out.Succeeded {
		out.FailureCode = string(e.Code)
		out.FailureMessage = e.Msg
	}
	return out, nil
}
