package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memoryRepo "mentorly/database/repository/memory"
	slotRepo "mentorly/database/repository/slot"
	"mentorly/models"
	"mentorly/services/meeting"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeMeetings struct {
	mu    sync.Mutex
	err   error
	block bool
	calls int
}

func (f *fakeMeetings) CreateMeeting(ctx context.Context, req meeting.MeetingRequest) (*models.MeetingInfo, error) {
	f.mu.Lock()
	f.calls++
	err, block := f.err, f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, &models.MeetingProviderError{Err: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}
	return &models.MeetingInfo{MeetingID: "m-1", JoinURL: "https://meet.test/j/m-1"}, nil
}

type sentNotification struct {
	Kind      models.NotificationKind
	Recipient string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, kind models.NotificationKind, p models.NotificationPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{Kind: kind, Recipient: p.RecipientID})
	return nil
}

func (r *recordingNotifier) kinds() []models.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationKind, 0, len(r.sent))
	for _, s := range r.sent {
		out = append(out, s.Kind)
	}
	return out
}

// flakySlots loses the first `conflicts` Book calls to an imaginary concurrent writer.
type flakySlots struct {
	slotRepo.SlotRepository
	mu        sync.Mutex
	conflicts int
}

func (f *flakySlots) Book(ctx context.Context, prev models.Slot, entry models.SlotBooking) error {
	f.mu.Lock()
	if f.conflicts > 0 {
		f.conflicts--
		f.mu.Unlock()
		return models.ErrWriteConflict
	}
	f.mu.Unlock()
	return f.SlotRepository.Book(ctx, prev, entry)
}

type fixture struct {
	svc       *DefaultBookingService
	slots     *memoryRepo.SlotRepo
	bookings  *memoryRepo.BookingRepo
	offerings *memoryRepo.OfferingRepo
	templates *memoryRepo.TemplateRepo
	meetings  *fakeMeetings
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		slots:     memoryRepo.NewSlotRepo(),
		bookings:  memoryRepo.NewBookingRepo(),
		offerings: memoryRepo.NewOfferingRepo(),
		templates: memoryRepo.NewTemplateRepo(),
		meetings:  &fakeMeetings{},
		notifier:  &recordingNotifier{},
	}
	f.svc = &DefaultBookingService{
		Slots:          f.slots,
		Bookings:       f.bookings,
		Offerings:      f.offerings,
		Templates:      f.templates,
		Meetings:       f.meetings,
		Notifier:       f.notifier,
		Logger:         zap.NewNop(),
		MeetingTimeout: time.Second,
		Now:            func() time.Time { return testNow },
	}
	return f
}

func (f *fixture) offering(t *testing.T, id string, price int64) {
	t.Helper()
	require.NoError(t, f.offerings.Create(context.Background(), &models.Offering{
		ID:           id,
		SpecialistID: "sp-1",
		Title:        "Career consulting",
		ServiceType:  models.ServiceTypeConsulting,
		PriceMinor:   price,
		Currency:     "usd",
		Status:       models.OfferingStatusPublished,
		SlotMode:     models.SlotModeExplicit,
	}))
}

// slot stores a slot of the offering and returns its id.
func (f *fixture) slot(t *testing.T, offeringID, date, start string, capacity int) string {
	t.Helper()
	s := models.Slot{
		SpecialistID:    "sp-1",
		OfferingID:      offeringID,
		Kind:            models.SlotKindSession,
		Date:            date,
		StartTime:       start,
		EndTime:         "23:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		Capacity:        capacity,
	}
	if capacity == 1 {
		s.Kind = models.SlotKindAppointment
	}
	s.Status = s.OpenStatus()
	slots := []models.Slot{s}
	n, err := f.slots.CreateMany(context.Background(), slots)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return slots[0].ID
}

func (f *fixture) getSlot(t *testing.T, id string) *models.Slot {
	t.Helper()
	s, err := f.slots.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func customer(id string) CustomerInfo {
	return CustomerInfo{CustomerID: id, Email: id + "@example.com"}
}

func isUnavailable(err error) bool {
	var u *models.SlotUnavailableError
	return errors.As(err, &u)
}
