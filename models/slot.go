package models

import "time"

// SlotKind selects which status family a slot uses.
type SlotKind string

const (
	// SlotKindAppointment is a single-capacity slot: available -> booked.
	SlotKindAppointment SlotKind = "appointment"
	// SlotKindSession is a capacity-bounded slot: active while bookedCount < capacity.
	SlotKindSession SlotKind = "session"
)

const (
	SlotStatusAvailable = "available"
	SlotStatusBooked    = "booked"
	SlotStatusActive    = "active"
	SlotStatusInactive  = "inactive"
)

// Slot is a materialized, bookable unit of a specialist's time.
type Slot struct {
	ID              string        `bson:"id" json:"id"`
	SpecialistID    string        `bson:"specialistId" json:"specialistId"`
	OfferingID      string        `bson:"offeringId" json:"offeringId"`
	Kind            SlotKind      `bson:"kind" json:"kind"`
	Date            string        `bson:"date" json:"date"`           // "2025-02-25"
	StartTime       string        `bson:"startTime" json:"startTime"` // "09:00"
	EndTime         string        `bson:"endTime" json:"endTime"`
	DurationMinutes int           `bson:"durationMinutes" json:"durationMinutes"`
	Timezone        string        `bson:"timezone" json:"timezone"`
	Capacity        int           `bson:"capacity" json:"capacity"`
	BookedCount     int           `bson:"bookedCount" json:"bookedCount"`
	Status          string        `bson:"status" json:"status"`
	Version         int           `bson:"version" json:"version"`
	Bookings        []SlotBooking `bson:"bookings,omitempty" json:"bookings,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
}

// SlotBooking is the denormalized booking reference embedded on a slot.
type SlotBooking struct {
	BookingID    string        `bson:"bookingId" json:"bookingId"`
	CustomerID   string        `bson:"customerId" json:"customerId"`
	Status       string        `bson:"status" json:"status"`
	MeetingRef   string        `bson:"meetingRef,omitempty" json:"meetingRef,omitempty"`
	Cancellation *Cancellation `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
}

func (s Slot) IsFullyBooked() bool {
	return s.BookedCount >= s.Capacity
}

// OpenStatus is the status a slot of this kind has while it can take bookings.
func (s Slot) OpenStatus() string {
	if s.Kind == SlotKindAppointment {
		return SlotStatusAvailable
	}
	return SlotStatusActive
}

// StatusFor returns the persisted status for a given booked count.
// Session slots stay active when full; fullness is derived from the count.
func (s Slot) StatusFor(bookedCount int) string {
	if s.Kind == SlotKindAppointment && bookedCount >= s.Capacity {
		return SlotStatusBooked
	}
	return s.OpenStatus()
}

// StartsAt resolves the slot start to an absolute instant in its timezone.
func (s Slot) StartsAt() (time.Time, error) {
	loc := time.UTC
	if s.Timezone != "" {
		l, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}
	return time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.StartTime, loc)
}
