package notification

import (
	"context"
	"errors"
	"fmt"

	"mentorly/models"
	"mentorly/utils"

	"go.uber.org/zap"
)

// Channel is one delivery path on the worker side.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, kind models.NotificationKind, n models.NotificationPayload) error
}

var subjects = map[models.NotificationKind]string{
	models.NotifyBookingConfirmed:       "Booking confirmed",
	models.NotifyBookingSetupIncomplete: "Booking confirmed, meeting link pending",
	models.NotifyBookingCancelled:       "Booking cancelled",
	models.NotifyPaymentSucceeded:       "Payment successful",
	models.NotifyPaymentReceived:        "Payment received",
	models.NotifyPaymentFailed:          "Payment failed",
	models.NotifyPaymentRefunded:        "Payment refunded",
}

// Subject is the payload's subject or a default title for kind.
func Subject(kind models.NotificationKind, n models.NotificationPayload) string {
	if n.Subject != "" {
		return n.Subject
	}
	if s, ok := subjects[kind]; ok {
		return s
	}
	return string(kind)
}

// Deliverer fans a notification out to every channel.
type Deliverer struct {
	Channels []Channel
	Logger   *zap.Logger
}

// Deliver fails only if every channel failed, so a retry doesn't duplicate what got through.
func (d *Deliverer) Deliver(ctx context.Context, kind models.NotificationKind, n models.NotificationPayload) error {
	logger := utils.LoggerOr(d.Logger)
	var errs []error
	for _, ch := range d.Channels {
		if err := ch.Deliver(ctx, kind, n); err != nil {
			logger.Warn("notification channel failed",
				zap.String("channel", ch.Name()),
				zap.String("kind", string(kind)),
				zap.String("recipientID", n.RecipientID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	if len(d.Channels) > 0 && len(errs) == len(d.Channels) {
		return errors.Join(errs...)
	}
	return nil
}
