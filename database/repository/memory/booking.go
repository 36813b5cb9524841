package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type BookingRepo struct {
	mu    sync.Mutex
	items map[string]models.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{items: make(map[string]models.Booking)}
}

func (r *BookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if _, exists := r.items[b.ID]; exists {
		return models.ErrDuplicateKey
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.UpdatedAt = b.CreatedAt
	r.items[b.ID] = copyBooking(*b)
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	out := copyBooking(b)
	return &out, nil
}

func (r *BookingRepo) Update(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[b.ID]
	if !ok || cur.Version != b.Version {
		return models.ErrWriteConflict
	}
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	r.items[b.ID] = copyBooking(*b)
	return nil
}

func (r *BookingRepo) ListByCustomer(_ context.Context, customerID string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r *BookingRepo) ListBySpecialist(_ context.Context, specialistID, status string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.SpecialistID == specialistID && (status == "" || b.Status == status)
	}), nil
}

func (r *BookingRepo) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.items {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func copyBooking(b models.Booking) models.Booking {
	b.StatusHistory = append([]models.StatusChange(nil), b.StatusHistory...)
	b.RescheduleHistory = append([]models.Reschedule(nil), b.RescheduleHistory...)
	if b.Meeting != nil {
		m := *b.Meeting
		b.Meeting = &m
	}
	if b.Cancellation != nil {
		c := *b.Cancellation
		b.Cancellation = &c
	}
	return b
}
