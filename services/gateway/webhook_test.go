package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func event(t *testing.T, id, typ string, intent map[string]interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	return stripe.Event{ID: id, Type: stripe.EventType(typ), Data: &stripe.EventData{Raw: raw}}
}

func TestSettlementFromSucceededEvent(t *testing.T) {
	got, err := settlementFromEvent(event(t, "evt_1", EventIntentSucceeded, map[string]interface{}{
		"id": "pi_1", "object": "payment_intent", "status": "succeeded",
	}))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "evt_1", got.EventID)
	assert.Equal(t, "pi_1", got.IntentID)
	assert.True(t, got.Succeeded)
}

func TestSettlementFromFailedEvent(t *testing.T) {
	got, err := settlementFromEvent(event(t, "evt_2", EventIntentFailed, map[string]interface{}{
		"id": "pi_2", "object": "payment_intent",
		"last_payment_error": map[string]interface{}{"code": "card_declined", "message": "Your card was declined."},
	}))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Succeeded)
	assert.Equal(t, "card_declined", got.FailureCode)
	assert.Equal(t, "Your card was declined.", got.FailureMessage)
}

func TestSettlementIgnoresOtherEvents(t *testing.T) {
	got, err := settlementFromEvent(event(t, "evt_3", "customer.created", map[string]interface{}{"id": "cus_1"}))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseStripeEventRejectsBadSignature(t *testing.T) {
	_, err := ParseStripeEvent([]byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef", "whsec_test")
	require.Error(t, err)
}
