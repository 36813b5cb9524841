package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/models"
	"mentorly/services/meeting"
	"mentorly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// claimAttempts is the first compare-and-swap plus one retry.
const claimAttempts = 2

// BookSlot takes one unit of the slot's capacity for the customer and creates a pending
// booking. Free offerings are confirmed straight away.
func (s *DefaultBookingService) BookSlot(ctx context.Context, slotID string, customer CustomerInfo) (*BookingOutcome, error) {
	logger := s.logger()
	if customer.CustomerID == "" {
		return nil, &models.ValidationError{Message: "customerId is required"}
	}
	if err := utils.ValidateStruct(customer); err != nil {
		return nil, err
	}

	bookingID := uuid.New().String()
	entry := models.SlotBooking{
		BookingID:  bookingID,
		CustomerID: customer.CustomerID,
		Status:     models.BookingStatusPending,
	}
	slot, offering, err := s.claimSlot(ctx, slotID, entry, "")
	if err != nil {
		utils.BookingsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	now := s.now()
	b := &models.Booking{
		ID:            bookingID,
		SlotID:        slot.ID,
		OfferingID:    slot.OfferingID,
		SpecialistID:  slot.SpecialistID,
		CustomerID:    customer.CustomerID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		Date:          slot.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		Timezone:      slot.Timezone,
		Status:        models.BookingStatusPending,
		StatusHistory: []models.StatusChange{{To: models.BookingStatusPending, Actor: customer.CustomerID, At: now}},
		CreatedAt:     now,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		logger.Error("booking insert failed after slot claim, releasing capacity",
			zap.String("slotID", slot.ID), zap.String("bookingID", bookingID), zap.Error(err))
		if relErr := s.releaseSlot(ctx, slot.ID, bookingID, nil); relErr != nil {
			logger.Error("failed to release slot after booking insert failure",
				zap.String("slotID", slot.ID), zap.String("bookingID", bookingID), zap.Error(relErr))
		}
		utils.BookingsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save booking: %w", err)
	}
	logger.Info("slot booked",
		zap.String("slotID", slot.ID), zap.String("bookingID", b.ID), zap.String("customerID", b.CustomerID))

	if !offering.IsFree() {
		utils.BookingsTotal.WithLabelValues("payment_required").Inc()
		return &BookingOutcome{
			Booking:         b,
			PaymentRequired: true,
			Amount:          offering.PriceMinor,
			Currency:        offering.Currency,
		}, nil
	}

	confirmed, err := s.Finalize(ctx, b.ID, "")
	if err != nil {
		// The booking and the slot claim are saved; confirmation can be retried.
		logger.Error("free booking saved but not confirmed", zap.String("bookingID", b.ID), zap.Error(err))
		utils.BookingsTotal.WithLabelValues("confirm_failed").Inc()
		return &BookingOutcome{Booking: b, Warning: "booking saved, confirmation pending"}, nil
	}
	return outcomeFor(confirmed), nil
}

func outcomeFor(b *models.Booking) *BookingOutcome {
	out := &BookingOutcome{Booking: b, SetupIncomplete: b.SetupIncomplete}
	if b.SetupIncomplete {
		out.Warning = "booking saved, meeting setup incomplete"
	}
	return out
}

func outcomeLabel(err error) string {
	var unavailable *models.SlotUnavailableError
	switch {
	case errors.As(err, &unavailable) && unavailable.Conflict:
		return "conflict"
	case errors.As(err, &unavailable):
		return "unavailable"
	case models.ErrorCode(err) == models.CodeSlotNotFound:
		return "not_found"
	}
	return "error"
}

// claimSlot adds entry to the slot with a compare-and-swap on the status, count and version
// read just before. A lost race re-reads and tries once more. skipSlotID blocks rescheduling
// onto the slot being left.
func (s *DefaultBookingService) claimSlot(ctx context.Context, slotID string, entry models.SlotBooking, skipSlotID string) (*models.Slot, *models.Offering, error) {
	if skipSlotID != "" && slotID == skipSlotID {
		return nil, nil, &models.ValidationError{Message: "booking already holds this slot"}
	}
	var offering *models.Offering
	for attempt := 1; ; attempt++ {
		slot, err := s.Slots.GetByID(ctx, slotID)
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, nil, &models.SlotNotFoundError{SlotID: slotID}
		}
		if err != nil {
			return nil, nil, err
		}
		if offering == nil {
			if offering, err = s.loadOffering(ctx, slot.OfferingID); err != nil {
				return nil, nil, err
			}
			if !offering.IsPublished() {
				return nil, nil, &models.SlotUnavailableError{SlotID: slotID, Reason: "offering is not published"}
			}
		}
		if err := s.checkBookable(*slot, entry.CustomerID); err != nil {
			return nil, nil, err
		}

		err = s.Slots.Book(ctx, *slot, entry)
		if err == nil {
			return slot, offering, nil
		}
		if !errors.Is(err, models.ErrWriteConflict) {
			return nil, nil, err
		}
		utils.SlotConflictsTotal.Inc()
		if attempt >= claimAttempts {
			s.logger().Warn("slot claim lost twice to concurrent writers", zap.String("slotID", slotID))
			return nil, nil, &models.SlotUnavailableError{SlotID: slotID, Reason: "concurrent update", Conflict: true}
		}
	}
}

func (s *DefaultBookingService) checkBookable(slot models.Slot, customerID string) error {
	if slot.Status != slot.OpenStatus() {
		return &models.SlotUnavailableError{SlotID: slot.ID, Reason: "slot is " + slot.Status}
	}
	if slot.IsFullyBooked() {
		return &models.SlotUnavailableError{SlotID: slot.ID, Reason: "slot is fully booked"}
	}
	startsAt, err := slot.StartsAt()
	if err != nil {
		return fmt.Errorf("slot %s has a bad start: %w", slot.ID, err)
	}
	if !startsAt.After(s.now()) {
		return &models.SlotUnavailableError{SlotID: slot.ID, Reason: "slot has already started"}
	}
	for _, e := range slot.Bookings {
		if e.CustomerID == customerID && e.Status != models.BookingStatusCancelled {
			return &models.SlotUnavailableError{SlotID: slot.ID, Reason: "customer already holds this slot"}
		}
	}
	return nil
}

// Finalize creates the meeting and confirms a pending booking. A failed or timed out meeting
// call still confirms the booking, flagged SetupIncomplete. Confirmed bookings are returned as is.
func (s *DefaultBookingService) Finalize(ctx context.Context, bookingID, paymentID string) (*models.Booking, error) {
	logger := s.logger()
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusConfirmed {
		return b, nil
	}
	if !CanTransition(b.Status, models.BookingStatusConfirmed) {
		return nil, &models.InvalidTransitionError{From: b.Status, To: models.BookingStatusConfirmed}
	}
	offering, err := s.loadOffering(ctx, b.OfferingID)
	if err != nil {
		return nil, err
	}

	if info, err := s.createMeeting(ctx, b, offering); err != nil {
		logger.Warn("meeting setup failed, confirming booking without it",
			zap.String("bookingID", b.ID), zap.Error(err))
		b.SetupIncomplete = true
		b.SetupError = err.Error()
	} else {
		b.Meeting = info
		b.SetupIncomplete = false
		b.SetupError = ""
	}
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	if err := Transition(b, models.BookingStatusConfirmed, RoleSystem, "", s.now()); err != nil {
		return nil, err
	}

	if err := s.Bookings.Update(ctx, b); err != nil {
		if errors.Is(err, models.ErrWriteConflict) {
			if cur, getErr := s.GetBooking(ctx, bookingID); getErr == nil && cur.Status == models.BookingStatusConfirmed {
				return cur, nil
			}
		}
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	meetingRef := ""
	if b.Meeting != nil {
		meetingRef = b.Meeting.MeetingID
	}
	if err := s.Slots.UpdateBookingEntry(ctx, b.SlotID, b.ID, b.Status, meetingRef); err != nil {
		logger.Warn("failed to mirror booking status onto slot", zap.String("slotID", b.SlotID), zap.Error(err))
	}

	kind := models.NotifyBookingConfirmed
	outcome := "confirmed"
	if b.SetupIncomplete {
		kind = models.NotifyBookingSetupIncomplete
		outcome = "confirmed_degraded"
	}
	utils.BookingsTotal.WithLabelValues(outcome).Inc()
	s.notify(ctx, kind, b.CustomerID, b.CustomerEmail, b)
	s.notify(ctx, kind, b.SpecialistID, "", b)
	logger.Info("booking confirmed", zap.String("bookingID", b.ID), zap.Bool("setupIncomplete", b.SetupIncomplete))
	return b, nil
}

func (s *DefaultBookingService) createMeeting(ctx context.Context, b *models.Booking, offering *models.Offering) (*models.MeetingInfo, error) {
	if s.Meetings == nil {
		return nil, &models.MeetingProviderError{Err: errors.New("no meeting provider configured")}
	}
	start, err := instant(b, b.StartTime)
	if err != nil {
		return nil, &models.MeetingProviderError{Err: err}
	}
	end, err := instant(b, b.EndTime)
	if err != nil {
		return nil, &models.MeetingProviderError{Err: err}
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	timeout := s.MeetingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Meetings.CreateMeeting(callCtx, meeting.MeetingRequest{
		HostRef:          offering.MeetingHostRef,
		ParticipantEmail: b.CustomerEmail,
		Topic:            offering.Title,
		StartTime:        start,
		EndTime:          end,
	})
}
