package payment

import (
	"context"
	"errors"
	"strconv"
	"time"

	enrollmentRepo "mentorly/database/repository/enrollment"
	offeringRepo "mentorly/database/repository/offering"
	paymentRepo "mentorly/database/repository/payment"
	"mentorly/models"
	"mentorly/services/booking"
	"mentorly/services/commission"
	"mentorly/services/gateway"
	"mentorly/services/notification"
	"mentorly/utils"

	"go.uber.org/zap"
)

// Locker serializes intent creation per (customer, service). utils.RedisLocker in production.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Bookings is the part of the booking service settlement drives.
type Bookings interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	Finalize(ctx context.Context, bookingID, paymentID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor booking.Actor, reason string) (*models.Booking, error)
}

type PaymentService interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
	Reconcile(ctx context.Context, ev models.SettlementEvent) (ReconcileResult, error)
	Refund(ctx context.Context, paymentID, specialistID string, amount *int64, reason string) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	ListForSpecialist(ctx context.Context, specialistID string) (*Earnings, error)
}

type IntentRequest struct {
	CustomerID    string            `json:"customerId" validate:"required"`
	CustomerEmail string            `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerName  string            `json:"customerName,omitempty"`
	Service       models.ServiceRef `json:"service" validate:"required"`
}

// IntentResult is what the client needs to complete payment. Free is set when nothing had
// to be paid and access was granted directly; Reused when a recent intent was returned.
type IntentResult struct {
	PaymentID    string             `json:"paymentId,omitempty"`
	IntentID     string             `json:"intentId,omitempty"`
	ClientSecret string             `json:"clientSecret,omitempty"`
	Amount       int64              `json:"amount"`
	Currency     string             `json:"currency"`
	Status       string             `json:"status"`
	Reused       bool               `json:"reused"`
	Free         bool               `json:"free"`
	Enrollment   *models.Enrollment `json:"enrollment,omitempty"`
	Booking      *models.Booking    `json:"booking,omitempty"`
}

type ReconcileResult string

const (
	ResultProcessed ReconcileResult = "processed"
	ResultDuplicate ReconcileResult = "duplicate"
	ResultUnmatched ReconcileResult = "unmatched"
	// ResultStale is a failure reported for a payment that already settled.
	ResultStale ReconcileResult = "stale"
)

// Earnings is a specialist's payment ledger with completed totals.
type Earnings struct {
	Payments        []models.Payment `json:"payments"`
	GrossTotal      int64            `json:"grossTotal"`
	CommissionTotal int64            `json:"commissionTotal"`
	EarningsTotal   int64            `json:"earningsTotal"`
}

type DefaultPaymentService struct {
	Payments       paymentRepo.PaymentRepository
	Enrollments    enrollmentRepo.EnrollmentRepository
	Offerings      offeringRepo.OfferingRepository
	Bookings       Bookings
	Commission     commission.CommissionService
	Gateway        gateway.PaymentGateway
	Locker         Locker
	Notifier       notification.Dispatcher
	Logger         *zap.Logger
	DedupeWindow   time.Duration
	GatewayTimeout time.Duration
	Now            func() time.Time
}

func (s *DefaultPaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultPaymentService) logger() *zap.Logger {
	return utils.LoggerOr(s.Logger)
}

func (s *DefaultPaymentService) dedupeWindow() time.Duration {
	if s.DedupeWindow > 0 {
		return s.DedupeWindow
	}
	return 10 * time.Minute
}

// gatewayCtx bounds one gateway call. A timeout is a failed call, never retried here.
func (s *DefaultPaymentService) gatewayCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.GatewayTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *DefaultPaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.Payments.GetByID(ctx, paymentID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "payment", ID: paymentID}
	}
	return p, err
}

func (s *DefaultPaymentService) ListForSpecialist(ctx context.Context, specialistID string) (*Earnings, error) {
	payments, err := s.Payments.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	out := &Earnings{Payments: payments}
	if out.Payments == nil {
		out.Payments = []models.Payment{}
	}
	for _, p := range payments {
		if p.Status != models.PaymentStatusCompleted {
			continue
		}
		out.GrossTotal += p.Amount
		out.CommissionTotal += p.CommissionAmount
		out.EarningsTotal += p.SpecialistEarnings
	}
	return out, nil
}

func (s *DefaultPaymentService) notify(ctx context.Context, kind models.NotificationKind, recipientID, email string, p *models.Payment) {
	data := map[string]string{
		"paymentId":  p.ID,
		"offeringId": p.OfferingID,
		"amount":     strconv.FormatInt(p.Amount, 10),
		"currency":   p.Currency,
		"status":     p.Status,
	}
	if p.BookingID != "" {
		data["bookingId"] = p.BookingID
	}
	notification.Send(ctx, s.Notifier, s.Logger, kind, models.NotificationPayload{
		RecipientID:    recipientID,
		RecipientEmail: email,
		Data:           data,
	})
}
