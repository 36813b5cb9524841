package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records one gateway intent and its settlement. Amounts are minor units.
type Payment struct {
	ID                   string      `bson:"id" json:"id"`
	IdempotencyKey       string      `bson:"idempotencyKey" json:"idempotencyKey"`
	ExternalIntentID     string      `bson:"externalIntentId" json:"externalIntentId"`
	ClientSecret         string      `bson:"clientSecret,omitempty" json:"-"`
	CustomerID           string      `bson:"customerId" json:"customerId"`
	CustomerEmail        string      `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	SpecialistID         string      `bson:"specialistId" json:"specialistId"`
	OfferingID           string      `bson:"offeringId" json:"offeringId"`
	BookingID            string      `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	ServiceKey           string      `bson:"serviceKey" json:"serviceKey"`
	ServiceType          ServiceType `bson:"serviceType" json:"serviceType"`
	Amount               int64       `bson:"amount" json:"amount"`
	Currency             string      `bson:"currency" json:"currency"`
	Status               string      `bson:"status" json:"status"`
	CommissionPercentage float64     `bson:"commissionPercentage" json:"commissionPercentage"`
	CommissionAmount     int64       `bson:"commissionAmount" json:"commissionAmount"`
	SpecialistEarnings   int64       `bson:"specialistEarnings" json:"specialistEarnings"`
	ExternalEventID      string      `bson:"externalEventId,omitempty" json:"externalEventId,omitempty"`
	FailureEventIDs      []string    `bson:"failureEventIds,omitempty" json:"-"`
	FailureCode          string      `bson:"failureCode,omitempty" json:"failureCode,omitempty"`
	FailureMessage       string      `bson:"failureMessage,omitempty" json:"failureMessage,omitempty"`
	RefundID             string      `bson:"refundId,omitempty" json:"refundId,omitempty"`
	RefundReason         string      `bson:"refundReason,omitempty" json:"refundReason,omitempty"`
	CreatedAt            time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time   `bson:"updatedAt" json:"updatedAt"`
	CompletedAt          *time.Time  `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	FailedAt             *time.Time  `bson:"failedAt,omitempty" json:"failedAt,omitempty"`
	RefundedAt           *time.Time  `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
}

// ServiceRef identifies what a payment is for. BookingID is set for slot-based offerings.
type ServiceRef struct {
	OfferingID string `json:"offeringId" validate:"required"`
	BookingID  string `json:"bookingId,omitempty"`
}

// Key is the dedupe key for a (customer, service) pair.
func (r ServiceRef) Key() string {
	if r.BookingID == "" {
		return r.OfferingID
	}
	return r.OfferingID + "/" + r.BookingID
}

// GatewayCustomer caches the external customer handle for a platform customer.
type GatewayCustomer struct {
	CustomerID string    `bson:"customerId" json:"customerId"`
	Handle     string    `bson:"handle" json:"handle"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// SettlementEvent is a verified gateway notification about an intent's outcome.
type SettlementEvent struct {
	EventID        string `json:"eventId"`
	EventType      string `json:"eventType"`
	IntentID       string `json:"intentId"`
	Succeeded      bool   `json:"succeeded"`
	FailureCode    string `json:"failureCode,omitempty"`
	FailureMessage string `json:"failureMessage,omitempty"`
}
