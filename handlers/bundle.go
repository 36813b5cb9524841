package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	CreateTemplate      gin.HandlerFunc
	GetTemplate         gin.HandlerFunc
	GetOpenAvailability gin.HandlerFunc

	// Offering endpoints
	UpdateSchedule    gin.HandlerFunc
	PublishOffering   gin.HandlerFunc
	UnpublishOffering gin.HandlerFunc
	MaterializeSlots  gin.HandlerFunc
	ListSlots         gin.HandlerFunc

	// Booking endpoints
	BookSlot          gin.HandlerFunc
	CancelBooking     gin.HandlerFunc
	RescheduleBooking gin.HandlerFunc
	CompleteBooking   gin.HandlerFunc
	MarkNoShow        gin.HandlerFunc
	MyBookings        gin.HandlerFunc

	// Payment endpoints
	CreatePaymentIntent gin.HandlerFunc
	RefundPayment       gin.HandlerFunc
	Earnings            gin.HandlerFunc
	StripeWebhook       gin.HandlerFunc

	// Admin endpoints
	GetCommission     gin.HandlerFunc
	UpdateCommission  gin.HandlerFunc
	CommissionHistory gin.HandlerFunc
}
