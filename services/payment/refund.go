package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/models"
	"mentorly/services/booking"
	"mentorly/utils"

	"go.uber.org/zap"
)

const refundLockTTL = time.Minute

// intentSucceeded is the gateway status of a captured intent.
const intentSucceeded = "succeeded"

// Refund returns a completed payment to the customer. Only the specialist who was paid
// may refund. Enrollment access is revoked and a linked booking is cancelled.
func (s *DefaultPaymentService) Refund(ctx context.Context, paymentID, specialistID string, amount *int64, reason string) (*models.Payment, error) {
	logger := s.logger().With(zap.String("paymentID", paymentID))

	p, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.SpecialistID != specialistID {
		return nil, &models.ForbiddenError{Reason: "only the paid specialist can refund this payment"}
	}
	if p.Status != models.PaymentStatusCompleted {
		return nil, &models.ValidationError{Message: fmt.Sprintf("payment is %s, only completed payments can be refunded", p.Status)}
	}
	if amount != nil && (*amount <= 0 || *amount > p.Amount) {
		return nil, &models.ValidationError{Message: fmt.Sprintf("refund amount must be between 1 and %d", p.Amount)}
	}

	release, err := s.Locker.Acquire(ctx, "payment:refund:"+p.ID, refundLockTTL)
	if errors.Is(err, utils.ErrLockHeld) {
		return nil, &models.BusyError{Key: "refund " + p.ID}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire refund lock: %w", err)
	}
	defer release()

	gctx, cancel := s.gatewayCtx(ctx)
	status, err := s.Gateway.RetrieveIntent(gctx, p.ExternalIntentID)
	cancel()
	if err != nil {
		return nil, asGatewayError("retrieve intent", err)
	}
	if status != intentSucceeded {
		logger.Warn("completed payment not settled at gateway", zap.String("intentStatus", status))
		return nil, &models.ValidationError{Message: "payment is not settled at the gateway yet (" + status + ")"}
	}

	gctx, cancel = s.gatewayCtx(ctx)
	refundID, err := s.Gateway.Refund(gctx, p.ExternalIntentID, amount)
	cancel()
	if err != nil {
		logger.Error("gateway refund failed", zap.Error(err))
		return nil, asGatewayError("refund", err)
	}

	now := s.now()
	if err := s.Payments.MarkRefunded(ctx, p.ID, refundID, reason, now); err != nil {
		logger.Error("gateway refunded but payment not updated", zap.String("refundID", refundID), zap.Error(err))
		return nil, fmt.Errorf("mark payment refunded: %w", err)
	}

	s.revokeEnrollment(ctx, p, now, logger)
	if p.BookingID != "" {
		if _, err := s.Bookings.Cancel(ctx, p.BookingID, booking.SystemActor, "refunded"); err != nil {
			logger.Error("refunded booking not cancelled", zap.String("bookingID", p.BookingID), zap.Error(err))
		}
	}

	out, err := s.Payments.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, models.NotifyPaymentRefunded, out.CustomerID, out.CustomerEmail, out)
	logger.Info("payment refunded", zap.String("refundID", refundID), zap.String("reason", reason))
	return out, nil
}

// revokeEnrollment takes away the access refunded paid for. When another completed payment
// of the customer still covers the offering, the enrollment is moved onto it instead.
func (s *DefaultPaymentService) revokeEnrollment(ctx context.Context, refunded *models.Payment, at time.Time, logger *zap.Logger) {
	others, err := s.Payments.ListCompletedForOffering(ctx, refunded.CustomerID, refunded.OfferingID)
	if err != nil {
		logger.Error("could not check remaining payments, enrollment left as is", zap.Error(err))
		return
	}
	var remaining *models.Payment
	for i := range others {
		if others[i].ID != refunded.ID {
			remaining = &others[i]
			break
		}
	}
	if remaining == nil {
		if err := s.Enrollments.MarkRefunded(ctx, refunded.CustomerID, refunded.OfferingID, refunded.ID, at); err != nil {
			logger.Warn("no enrollment linked to this payment to revoke", zap.Error(err))
		}
		return
	}

	e, err := s.Enrollments.GetByCustomerAndOffering(ctx, refunded.CustomerID, refunded.OfferingID)
	if err == nil && e.Status == models.EnrollmentStatusActive && e.PaymentID != refunded.ID {
		return
	}
	relinked := &models.Enrollment{
		CustomerID:    remaining.CustomerID,
		OfferingID:    remaining.OfferingID,
		SpecialistID:  remaining.SpecialistID,
		BookingID:     remaining.BookingID,
		PaymentID:     remaining.ID,
		Status:        models.EnrollmentStatusActive,
		PaymentStatus: models.PaymentStatusCompleted,
	}
	if _, err := s.Enrollments.Upsert(ctx, relinked); err != nil {
		logger.Error("failed to move enrollment to remaining payment",
			zap.String("remainingPaymentID", remaining.ID), zap.Error(err))
		return
	}
	logger.Info("enrollment kept through another payment", zap.String("remainingPaymentID", remaining.ID))
}
