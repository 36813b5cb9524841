package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/models"
	"mentorly/utils"

	"go.uber.org/zap"
)

// releaseAttempts bounds the retries of a capacity release; concurrent bookings on a busy
// session slot keep bumping its version.
const releaseAttempts = 3

// instant resolves a clock time on the booking's date in the booking's timezone.
func instant(b *models.Booking, clock string) (time.Time, error) {
	return models.Slot{Date: b.Date, StartTime: clock, Timezone: b.Timezone}.StartsAt()
}

// authorize lets the booking's customer and specialist act on it, plus admins and the platform.
func authorize(b *models.Booking, actor Actor, allowCustomer bool) error {
	switch actor.Role {
	case utils.RoleAdmin, RoleSystem:
		return nil
	case utils.RoleSpecialist:
		if actor.ID == b.SpecialistID {
			return nil
		}
	case utils.RoleCustomer:
		if allowCustomer && actor.ID == b.CustomerID {
			return nil
		}
	}
	return &models.ForbiddenError{Reason: "not a party to this booking"}
}

// checkDeadline enforces the specialist's cancellation deadline on customers.
func (s *DefaultBookingService) checkDeadline(ctx context.Context, b *models.Booking, actor Actor) error {
	if actor.Role != utils.RoleCustomer || s.Templates == nil {
		return nil
	}
	tmpl, err := s.Templates.GetActive(ctx, b.SpecialistID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	hours := tmpl.BookingRules.CancellationDeadlineHours
	if hours <= 0 {
		return nil
	}
	start, err := instant(b, b.StartTime)
	if err != nil {
		return err
	}
	if start.Sub(s.now()) < time.Duration(hours)*time.Hour {
		return &models.CancellationWindowError{DeadlineHours: hours}
	}
	return nil
}

// releaseSlot frees the capacity bookingID holds on the slot. A slot that is gone or no
// longer carries the booking has nothing to release.
func (s *DefaultBookingService) releaseSlot(ctx context.Context, slotID, bookingID string, c *models.Cancellation) error {
	for attempt := 1; ; attempt++ {
		slot, err := s.Slots.GetByID(ctx, slotID)
		if errors.Is(err, models.ErrRecordNotFound) {
			s.logger().Warn("slot already removed, nothing to release",
				zap.String("slotID", slotID), zap.String("bookingID", bookingID))
			return nil
		}
		if err != nil {
			return err
		}
		if !holds(*slot, bookingID) {
			return nil
		}
		err = s.Slots.Release(ctx, *slot, bookingID, c)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrWriteConflict) {
			return err
		}
		utils.SlotConflictsTotal.Inc()
		if attempt >= releaseAttempts {
			return &models.BusyError{Key: "slot " + slotID}
		}
	}
}

func holds(slot models.Slot, bookingID string) bool {
	for _, e := range slot.Bookings {
		if e.BookingID == bookingID && e.Status != models.BookingStatusCancelled {
			return true
		}
	}
	return false
}

// Cancel cancels a pending or confirmed booking and gives its capacity back to the slot.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID string, actor Actor, reason string) (*models.Booking, error) {
	logger := s.logger()
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorize(b, actor, true); err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, models.BookingStatusCancelled) {
		return nil, &models.InvalidTransitionError{From: b.Status, To: models.BookingStatusCancelled}
	}
	if err := s.checkDeadline(ctx, b, actor); err != nil {
		return nil, err
	}

	now := s.now()
	cancellation := &models.Cancellation{Actor: actor.ID, ActorRole: actor.Role, Reason: reason, At: now}
	if err := Transition(b, models.BookingStatusCancelled, actor.ID, reason, now); err != nil {
		return nil, err
	}
	b.Cancellation = cancellation
	if err := s.Bookings.Update(ctx, b); err != nil {
		if errors.Is(err, models.ErrWriteConflict) {
			return nil, &models.BusyError{Key: "booking " + bookingID}
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	if err := s.releaseSlot(ctx, b.SlotID, b.ID, cancellation); err != nil {
		logger.Error("booking cancelled but slot capacity not released",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID), zap.Error(err))
	}
	utils.BookingsTotal.WithLabelValues("cancelled").Inc()
	s.notify(ctx, models.NotifyBookingCancelled, b.CustomerID, b.CustomerEmail, b)
	s.notify(ctx, models.NotifyBookingCancelled, b.SpecialistID, "", b)
	logger.Info("booking cancelled",
		zap.String("bookingID", b.ID), zap.String("actor", actor.ID), zap.String("role", actor.Role))
	return b, nil
}

func (s *DefaultBookingService) Complete(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	return s.close(ctx, bookingID, actor, models.BookingStatusCompleted)
}

func (s *DefaultBookingService) MarkNoShow(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	return s.close(ctx, bookingID, actor, models.BookingStatusNoShow)
}

// close moves a confirmed booking to completed or no-show. The slot keeps its capacity.
func (s *DefaultBookingService) close(ctx context.Context, bookingID string, actor Actor, to string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorize(b, actor, false); err != nil {
		return nil, err
	}
	if err := Transition(b, to, actor.ID, "", s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Update(ctx, b); err != nil {
		if errors.Is(err, models.ErrWriteConflict) {
			return nil, &models.BusyError{Key: "booking " + bookingID}
		}
		return nil, err
	}
	if err := s.Slots.UpdateBookingEntry(ctx, b.SlotID, b.ID, to, ""); err != nil {
		s.logger().Warn("failed to mirror booking status onto slot", zap.String("slotID", b.SlotID), zap.Error(err))
	}
	utils.BookingsTotal.WithLabelValues(to).Inc()
	return b, nil
}

// Reschedule moves a live booking to another slot of the same offering. The new slot is
// claimed before the old one is released, so a failed move leaves the booking where it was.
func (s *DefaultBookingService) Reschedule(ctx context.Context, bookingID, newSlotID string, actor Actor) (*models.Booking, error) {
	logger := s.logger()
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorize(b, actor, true); err != nil {
		return nil, err
	}
	if IsTerminal(b.Status) {
		return nil, &models.InvalidTransitionError{From: b.Status, To: b.Status}
	}
	if err := s.checkDeadline(ctx, b, actor); err != nil {
		return nil, err
	}

	target, err := s.Slots.GetByID(ctx, newSlotID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.SlotNotFoundError{SlotID: newSlotID}
	}
	if err != nil {
		return nil, err
	}
	if target.OfferingID != b.OfferingID {
		return nil, &models.ValidationError{Message: "bookings can only move between slots of the same offering"}
	}

	entry := models.SlotBooking{BookingID: b.ID, CustomerID: b.CustomerID, Status: b.Status}
	if b.Meeting != nil {
		entry.MeetingRef = b.Meeting.MeetingID
	}
	slot, _, err := s.claimSlot(ctx, newSlotID, entry, b.SlotID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldSlotID := b.SlotID
	b.RescheduleHistory = append(b.RescheduleHistory, models.Reschedule{
		FromSlotID: oldSlotID,
		ToSlotID:   slot.ID,
		FromDate:   b.Date,
		FromStart:  b.StartTime,
		Actor:      actor.ID,
		At:         now,
	})
	b.SlotID = slot.ID
	b.Date, b.StartTime, b.EndTime, b.Timezone = slot.Date, slot.StartTime, slot.EndTime, slot.Timezone

	if err := s.Bookings.Update(ctx, b); err != nil {
		if relErr := s.releaseSlot(ctx, slot.ID, b.ID, nil); relErr != nil {
			logger.Error("failed to undo slot claim after reschedule failure",
				zap.String("slotID", slot.ID), zap.String("bookingID", b.ID), zap.Error(relErr))
		}
		if errors.Is(err, models.ErrWriteConflict) {
			return nil, &models.BusyError{Key: "booking " + bookingID}
		}
		return nil, fmt.Errorf("reschedule booking: %w", err)
	}

	moved := &models.Cancellation{Actor: actor.ID, ActorRole: actor.Role, Reason: "rescheduled", At: now}
	if err := s.releaseSlot(ctx, oldSlotID, b.ID, moved); err != nil {
		logger.Error("booking moved but old slot capacity not released",
			zap.String("bookingID", b.ID), zap.String("slotID", oldSlotID), zap.Error(err))
	}
	utils.BookingsTotal.WithLabelValues("rescheduled").Inc()
	logger.Info("booking rescheduled",
		zap.String("bookingID", b.ID), zap.String("from", oldSlotID), zap.String("to", slot.ID))
	return b, nil
}
