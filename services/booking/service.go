package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "mentorly/database/repository/booking"
	offeringRepo "mentorly/database/repository/offering"
	slotRepo "mentorly/database/repository/slot"
	templateRepo "mentorly/database/repository/template"
	"mentorly/models"
	"mentorly/services/meeting"
	"mentorly/services/notification"
	"mentorly/utils"

	"go.uber.org/zap"
)

// RoleSystem marks transitions made by the platform itself, e.g. after a refund.
const RoleSystem = "system"

// Actor is whoever asks for a transition.
type Actor struct {
	ID   string
	Role string
}

var SystemActor = Actor{ID: "system", Role: RoleSystem}

// CustomerInfo identifies the customer taking a slot.
type CustomerInfo struct {
	CustomerID string `json:"customerId"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Name       string `json:"name,omitempty"`
}

// BookingOutcome tells the caller what happened and what is left to do.
// PaymentRequired means the booking is pending until a payment intent settles.
type BookingOutcome struct {
	Booking         *models.Booking `json:"booking"`
	PaymentRequired bool            `json:"paymentRequired"`
	Amount          int64           `json:"amount,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	SetupIncomplete bool            `json:"setupIncomplete"`
	Warning         string          `json:"warning,omitempty"`
}

type BookingService interface {
	BookSlot(ctx context.Context, slotID string, customer CustomerInfo) (*BookingOutcome, error)
	Finalize(ctx context.Context, bookingID, paymentID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor Actor, reason string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	Reschedule(ctx context.Context, bookingID, newSlotID string, actor Actor) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListForCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListForSpecialist(ctx context.Context, specialistID, status string) ([]models.Booking, error)
}

// DefaultBookingService is the only writer of slot capacity.
type DefaultBookingService struct {
	Slots          slotRepo.SlotRepository
	Bookings       bookingRepo.BookingRepository
	Offerings      offeringRepo.OfferingRepository
	Templates      templateRepo.TemplateRepository
	Meetings       meeting.Provider
	Notifier       notification.Dispatcher
	Logger         *zap.Logger
	MeetingTimeout time.Duration
	Now            func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	return utils.LoggerOr(s.Logger)
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
	}
	return b, err
}

func (s *DefaultBookingService) ListForCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Bookings.ListByCustomer(ctx, customerID)
}

func (s *DefaultBookingService) ListForSpecialist(ctx context.Context, specialistID, status string) ([]models.Booking, error) {
	return s.Bookings.ListBySpecialist(ctx, specialistID, status)
}

func (s *DefaultBookingService) loadOffering(ctx context.Context, offeringID string) (*models.Offering, error) {
	o, err := s.Offerings.GetByID(ctx, offeringID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "offering", ID: offeringID}
	}
	return o, err
}

func (s *DefaultBookingService) notify(ctx context.Context, kind models.NotificationKind, recipientID, email string, b *models.Booking) {
	data := map[string]string{
		"bookingId":  b.ID,
		"offeringId": b.OfferingID,
		"date":       b.Date,
		"startTime":  b.StartTime,
		"status":     b.Status,
	}
	if b.Meeting != nil {
		data["joinUrl"] = b.Meeting.JoinURL
	}
	notification.Send(ctx, s.Notifier, s.Logger, kind, models.NotificationPayload{
		RecipientID:    recipientID,
		RecipientEmail: email,
		Data:           data,
	})
}
