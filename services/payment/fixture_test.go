package payment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	memoryRepo "mentorly/database/repository/memory"
	"mentorly/models"
	"mentorly/services/booking"
	"mentorly/services/commission"
	"mentorly/services/gateway"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu        sync.Mutex
	intents   int
	customers int
	refunds   int
	last      gateway.IntentParams
	err       error
	status    string
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreateIntent(_ context.Context, p gateway.IntentParams) (*gateway.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.intents++
	g.last = p
	id := fmt.Sprintf("pi_%d", g.intents)
	return &gateway.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != "" {
		return g.status, nil
	}
	return "succeeded", nil
}

func (g *fakeGateway) Refund(_ context.Context, intentID string, _ *int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds++
	return "re_" + intentID, nil
}

func (g *fakeGateway) calls() (intents, customers, refunds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.intents, g.customers, g.refunds
}

type fakeBookings struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	finalized map[string]int
	cancelled []string
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[string]*models.Booking{}, finalized: map[string]int{}}
}

func (f *fakeBookings) add(b *models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
}

func (f *fakeBookings) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: id}
	}
	out := *b
	return &out, nil
}

func (f *fakeBookings) Finalize(_ context.Context, id, paymentID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: id}
	}
	f.finalized[id]++
	b.Status = models.BookingStatusConfirmed
	b.PaymentID = paymentID
	out := *b
	return &out, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id string, _ booking.Actor, _ string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: id}
	}
	f.cancelled = append(f.cancelled, id)
	b.Status = models.BookingStatusCancelled
	out := *b
	return &out, nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent map[models.NotificationKind]int
}

func (n *countingNotifier) Notify(_ context.Context, kind models.NotificationKind, _ models.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[models.NotificationKind]int{}
	}
	n.sent[kind]++
	return nil
}

func (n *countingNotifier) count(kind models.NotificationKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[kind]
}

type fixture struct {
	svc         *DefaultPaymentService
	payments    *memoryRepo.PaymentRepo
	enrollments *memoryRepo.EnrollmentRepo
	offerings   *memoryRepo.OfferingRepo
	commission  *commission.DefaultCommissionService
	gateway     *fakeGateway
	bookings    *fakeBookings
	notifier    *countingNotifier
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments:    memoryRepo.NewPaymentRepo(),
		enrollments: memoryRepo.NewEnrollmentRepo(),
		offerings:   memoryRepo.NewOfferingRepo(),
		commission:  &commission.DefaultCommissionService{Repo: memoryRepo.NewCommissionRepo(), Logger: zap.NewNop()},
		gateway:     &fakeGateway{},
		bookings:    newFakeBookings(),
		notifier:    &countingNotifier{},
		now:         testNow,
	}
	f.svc = &DefaultPaymentService{
		Payments:    f.payments,
		Enrollments: f.enrollments,
		Offerings:   f.offerings,
		Bookings:    f.bookings,
		Commission:  f.commission,
		Gateway:     f.gateway,
		Locker:      memoryRepo.NewLocker(),
		Notifier:    f.notifier,
		Logger:      zap.NewNop(),
		Now:         func() time.Time { return f.now },
	}
	return f
}

// offering stores a published offering of specialist sp-1.
func (f *fixture) offering(t *testing.T, id string, price int64, mode models.SlotMode) *models.Offering {
	t.Helper()
	o := &models.Offering{
		ID:           id,
		SpecialistID: "sp-1",
		Title:        "Offering " + id,
		ServiceType:  models.ServiceTypeCourse,
		PriceMinor:   price,
		Currency:     "usd",
		Status:       models.OfferingStatusPublished,
		SlotMode:     mode,
	}
	require.NoError(t, f.offerings.Create(context.Background(), o))
	return o
}

func (f *fixture) pendingBooking(id, offeringID, customerID string) {
	f.bookings.add(&models.Booking{
		ID:           id,
		OfferingID:   offeringID,
		SpecialistID: "sp-1",
		CustomerID:   customerID,
		Status:       models.BookingStatusPending,
	})
}

func courseRequest(customerID, offeringID string) IntentRequest {
	return IntentRequest{
		CustomerID:    customerID,
		CustomerEmail: customerID + "@example.com",
		CustomerName:  "Customer " + customerID,
		Service:       models.ServiceRef{OfferingID: offeringID},
	}
}

func succeeded(eventID, intentID string) models.SettlementEvent {
	return models.SettlementEvent{EventID: eventID, EventType: gateway.EventIntentSucceeded, IntentID: intentID, Succeeded: true}
}

func failed(eventID, intentID string) models.SettlementEvent {
	return models.SettlementEvent{
		EventID:        eventID,
		EventType:      gateway.EventIntentFailed,
		IntentID:       intentID,
		FailureCode:    "card_declined",
		FailureMessage: "Your card was declined.",
	}
}
