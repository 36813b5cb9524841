package payment

import (
	"context"
	"errors"
	"fmt"

	"mentorly/models"
	"mentorly/utils"

	"go.uber.org/zap"
)

// Reconcile applies a verified settlement event. Replays of the same event, concurrent
// deliveries and out-of-order failures all leave exactly one completed payment and one
// active enrollment behind.
func (s *DefaultPaymentService) Reconcile(ctx context.Context, ev models.SettlementEvent) (res ReconcileResult, err error) {
	logger := s.logger().With(zap.String("eventID", ev.EventID), zap.String("intentID", ev.IntentID))
	defer func() {
		label := string(res)
		if err != nil {
			label = "error"
		}
		utils.ReconciliationsTotal.WithLabelValues(label).Inc()
	}()

	if ev.EventID == "" || ev.IntentID == "" {
		return "", &models.ValidationError{Message: "settlement event needs an event id and an intent id"}
	}

	if _, err := s.Payments.GetByEventID(ctx, ev.EventID); err == nil {
		logger.Info("settlement event already processed")
		return ResultDuplicate, nil
	} else if !errors.Is(err, models.ErrRecordNotFound) {
		return "", err
	}

	p, err := s.Payments.GetByIntentID(ctx, ev.IntentID)
	if errors.Is(err, models.ErrRecordNotFound) {
		logger.Warn("settlement event for unknown intent", zap.String("eventType", ev.EventType))
		return ResultUnmatched, nil
	}
	if err != nil {
		return "", err
	}

	if ev.Succeeded {
		return s.settle(ctx, logger, p, ev)
	}
	return s.fail(ctx, logger, p, ev)
}

func (s *DefaultPaymentService) settle(ctx context.Context, logger *zap.Logger, p *models.Payment, ev models.SettlementEvent) (ReconcileResult, error) {
	if p.Status == models.PaymentStatusCompleted || p.Status == models.PaymentStatusRefunded {
		logger.Info("payment already settled by another event",
			zap.String("paymentID", p.ID), zap.String("settledBy", p.ExternalEventID))
		return ResultDuplicate, nil
	}

	// Enrollment first: a redelivery after a crash between the two writes still activates it.
	enrollment := &models.Enrollment{
		CustomerID:    p.CustomerID,
		OfferingID:    p.OfferingID,
		SpecialistID:  p.SpecialistID,
		BookingID:     p.BookingID,
		PaymentID:     p.ID,
		Status:        models.EnrollmentStatusActive,
		PaymentStatus: models.PaymentStatusCompleted,
	}
	if _, err := s.Enrollments.Upsert(ctx, enrollment); err != nil {
		return "", fmt.Errorf("activate enrollment: %w", err)
	}

	err := s.Payments.MarkCompleted(ctx, p.ID, ev.EventID, s.now())
	if errors.Is(err, models.ErrWriteConflict) {
		logger.Info("lost settlement race, another delivery completed the payment", zap.String("paymentID", p.ID))
		return ResultDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("complete payment: %w", err)
	}
	p.Status = models.PaymentStatusCompleted

	if p.BookingID != "" {
		if _, err := s.Bookings.Finalize(ctx, p.BookingID, p.ID); err != nil {
			logger.Error("payment completed but booking not finalized",
				zap.String("paymentID", p.ID), zap.String("bookingID", p.BookingID), zap.Error(err))
		}
	}

	s.notify(ctx, models.NotifyPaymentSucceeded, p.CustomerID, p.CustomerEmail, p)
	s.notify(ctx, models.NotifyPaymentReceived, p.SpecialistID, "", p)
	logger.Info("payment completed",
		zap.String("paymentID", p.ID),
		zap.String("customerID", p.CustomerID),
		zap.Int64("amount", p.Amount))
	return ResultProcessed, nil
}

func (s *DefaultPaymentService) fail(ctx context.Context, logger *zap.Logger, p *models.Payment, ev models.SettlementEvent) (ReconcileResult, error) {
	if p.Status == models.PaymentStatusCompleted || p.Status == models.PaymentStatusRefunded {
		logger.Warn("failure event for a settled payment ignored", zap.String("paymentID", p.ID))
		return ResultStale, nil
	}

	err := s.Payments.MarkFailed(ctx, p.ID, ev.EventID, ev.FailureCode, ev.FailureMessage, s.now())
	if errors.Is(err, models.ErrWriteConflict) {
		cur, getErr := s.Payments.GetByID(ctx, p.ID)
		if getErr == nil && cur.Status == models.PaymentStatusCompleted {
			return ResultStale, nil
		}
		return ResultDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("fail payment: %w", err)
	}
	p.Status = models.PaymentStatusFailed
	p.FailureCode, p.FailureMessage = ev.FailureCode, ev.FailureMessage

	s.notify(ctx, models.NotifyPaymentFailed, p.CustomerID, p.CustomerEmail, p)
	logger.Warn("payment failed",
		zap.String("paymentID", p.ID),
		zap.String("failureCode", ev.FailureCode),
		zap.String("failureMessage", ev.FailureMessage))
	return ResultProcessed, nil
}
