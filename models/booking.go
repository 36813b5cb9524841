package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no-show"
)

// Booking is a customer's claim on one slot.
type Booking struct {
	ID                string         `bson:"id" json:"id"`
	SlotID            string         `bson:"slotId" json:"slotId"`
	OfferingID        string         `bson:"offeringId" json:"offeringId"`
	SpecialistID      string         `bson:"specialistId" json:"specialistId"`
	CustomerID        string         `bson:"customerId" json:"customerId"`
	CustomerEmail     string         `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	CustomerName      string         `bson:"customerName,omitempty" json:"customerName,omitempty"`
	Date              string         `bson:"date" json:"date"`
	StartTime         string         `bson:"startTime" json:"startTime"`
	EndTime           string         `bson:"endTime" json:"endTime"`
	Timezone          string         `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Status            string         `bson:"status" json:"status"`
	StatusHistory     []StatusChange `bson:"statusHistory" json:"statusHistory"`
	PaymentID         string         `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Meeting           *MeetingInfo   `bson:"meeting,omitempty" json:"meeting,omitempty"`
	SetupIncomplete   bool           `bson:"setupIncomplete" json:"setupIncomplete"`
	SetupError        string         `bson:"setupError,omitempty" json:"setupError,omitempty"`
	Cancellation      *Cancellation  `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	RescheduleHistory []Reschedule   `bson:"rescheduleHistory,omitempty" json:"rescheduleHistory,omitempty"`
	Version           int            `bson:"version" json:"version"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time      `bson:"updatedAt" json:"updatedAt"`
}

type StatusChange struct {
	From   string    `bson:"from,omitempty" json:"from,omitempty"`
	To     string    `bson:"to" json:"to"`
	Actor  string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Reason string    `bson:"reason,omitempty" json:"reason,omitempty"`
	At     time.Time `bson:"at" json:"at"`
}

type Cancellation struct {
	Actor     string    `bson:"actor" json:"actor"`
	ActorRole string    `bson:"actorRole,omitempty" json:"actorRole,omitempty"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	At        time.Time `bson:"at" json:"at"`
}

type Reschedule struct {
	FromSlotID string    `bson:"fromSlotId" json:"fromSlotId"`
	ToSlotID   string    `bson:"toSlotId" json:"toSlotId"`
	FromDate   string    `bson:"fromDate" json:"fromDate"`
	FromStart  string    `bson:"fromStart" json:"fromStart"`
	Actor      string    `bson:"actor" json:"actor"`
	At         time.Time `bson:"at" json:"at"`
}

// MeetingInfo is what the meeting provider returns for a booked session.
type MeetingInfo struct {
	MeetingID string `bson:"meetingId" json:"meetingId"`
	JoinURL   string `bson:"joinUrl" json:"joinUrl"`
	HostURL   string `bson:"hostUrl,omitempty" json:"hostUrl,omitempty"`
}

const (
	EnrollmentStatusActive   = "active"
	EnrollmentStatusRefunded = "refunded"
)

// Enrollment grants a customer access to an offering. Unique per (customer, offering).
type Enrollment struct {
	ID            string     `bson:"id" json:"id"`
	CustomerID    string     `bson:"customerId" json:"customerId"`
	OfferingID    string     `bson:"offeringId" json:"offeringId"`
	SpecialistID  string     `bson:"specialistId" json:"specialistId"`
	BookingID     string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	PaymentID     string     `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Status        string     `bson:"status" json:"status"`
	PaymentStatus string     `bson:"paymentStatus" json:"paymentStatus"`
	EnrolledAt    time.Time  `bson:"enrolledAt" json:"enrolledAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
	RefundedAt    *time.Time `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
}
