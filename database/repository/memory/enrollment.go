package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type EnrollmentRepo struct {
	mu    sync.Mutex
	items map[string]models.Enrollment // keyed by customer|offering
}

func NewEnrollmentRepo() *EnrollmentRepo {
	return &EnrollmentRepo{items: make(map[string]models.Enrollment)}
}

func enrollmentKey(customerID, offeringID string) string { return customerID + "|" + offeringID }

func (r *EnrollmentRepo) Upsert(_ context.Context, e *models.Enrollment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := enrollmentKey(e.CustomerID, e.OfferingID)
	cur, exists := r.items[key]
	if !exists {
		cur = models.Enrollment{
			ID:         uuid.New().String(),
			CustomerID: e.CustomerID,
			OfferingID: e.OfferingID,
			EnrolledAt: now,
		}
	}
	cur.SpecialistID = e.SpecialistID
	cur.Status = models.EnrollmentStatusActive
	cur.PaymentStatus = e.PaymentStatus
	cur.UpdatedAt = now
	cur.RefundedAt = nil
	if e.BookingID != "" {
		cur.BookingID = e.BookingID
	}
	if e.PaymentID != "" {
		cur.PaymentID = e.PaymentID
	}
	r.items[key] = cur
	*e = cur
	return !exists, nil
}

func (r *EnrollmentRepo) GetByCustomerAndOffering(_ context.Context, customerID, offeringID string) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[enrollmentKey(customerID, offeringID)]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return &e, nil
}

func (r *EnrollmentRepo) MarkRefunded(_ context.Context, customerID, offeringID, paymentID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := enrollmentKey(customerID, offeringID)
	e, ok := r.items[key]
	if !ok || e.Status != models.EnrollmentStatusActive || e.PaymentID != paymentID {
		return models.ErrRecordNotFound
	}
	e.Status = models.EnrollmentStatusRefunded
	e.PaymentStatus = models.PaymentStatusRefunded
	e.RefundedAt = &at
	e.UpdatedAt = at
	r.items[key] = e
	return nil
}

func (r *EnrollmentRepo) ListByCustomer(_ context.Context, customerID string) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Enrollment
	for _, e := range r.items {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

// Count is used by tests to assert exactly-once activation.
func (r *EnrollmentRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
