package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type PaymentRepo struct {
	mu        sync.Mutex
	items     map[string]models.Payment
	customers map[string]models.GatewayCustomer
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		items:     make(map[string]models.Payment),
		customers: make(map[string]models.GatewayCustomer),
	}
}

func (r *PaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, existing := range r.items {
		if existing.ID == p.ID || existing.IdempotencyKey == p.IdempotencyKey {
			return models.ErrDuplicateKey
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	r.items[p.ID] = copyPayment(*p)
	return nil
}

func (r *PaymentRepo) find(match func(models.Payment) bool) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if match(p) {
			out := copyPayment(p)
			return &out, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*models.Payment, error) {
	return r.find(func(p models.Payment) bool { return p.ID == id })
}

func (r *PaymentRepo) GetByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	return r.find(func(p models.Payment) bool { return p.ExternalIntentID == intentID })
}

func (r *PaymentRepo) GetByEventID(_ context.Context, eventID string) (*models.Payment, error) {
	return r.find(func(p models.Payment) bool {
		return p.ExternalEventID == eventID || containsString(p.FailureEventIDs, eventID)
	})
}

func (r *PaymentRepo) LatestForService(_ context.Context, customerID, serviceKey string, since time.Time) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Payment
	for _, p := range r.items {
		if p.CustomerID != customerID || p.ServiceKey != serviceKey || p.CreatedAt.Before(since) {
			continue
		}
		if p.Status != models.PaymentStatusPending && p.Status != models.PaymentStatusCompleted {
			continue
		}
		if best == nil || p.CreatedAt.After(best.CreatedAt) {
			c := copyPayment(p)
			best = &c
		}
	}
	if best == nil {
		return nil, models.ErrRecordNotFound
	}
	return best, nil
}

func (r *PaymentRepo) ListBySpecialist(_ context.Context, specialistID string) ([]models.Payment, error) {
	return r.filter(func(p models.Payment) bool { return p.SpecialistID == specialistID }), nil
}

func (r *PaymentRepo) ListCompletedForOffering(_ context.Context, customerID, offeringID string) ([]models.Payment, error) {
	return r.filter(func(p models.Payment) bool {
		return p.CustomerID == customerID && p.OfferingID == offeringID && p.Status == models.PaymentStatusCompleted
	}), nil
}

func (r *PaymentRepo) filter(keep func(models.Payment) bool) []models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.items {
		if keep(p) {
			out = append(out, copyPayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *PaymentRepo) MarkCompleted(_ context.Context, id, eventID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.ExternalEventID != "" ||
		(p.Status != models.PaymentStatusPending && p.Status != models.PaymentStatusFailed) {
		return models.ErrWriteConflict
	}
	p = copyPayment(p)
	p.Status = models.PaymentStatusCompleted
	p.ExternalEventID = eventID
	p.FailureCode, p.FailureMessage = "", ""
	p.CompletedAt = &at
	p.UpdatedAt = at
	r.items[id] = p
	return nil
}

func (r *PaymentRepo) MarkFailed(_ context.Context, id, eventID, code, message string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || containsString(p.FailureEventIDs, eventID) ||
		(p.Status != models.PaymentStatusPending && p.Status != models.PaymentStatusFailed) {
		return models.ErrWriteConflict
	}
	p = copyPayment(p)
	p.Status = models.PaymentStatusFailed
	p.FailureCode, p.FailureMessage = code, message
	p.FailureEventIDs = append(p.FailureEventIDs, eventID)
	p.FailedAt = &at
	p.UpdatedAt = at
	r.items[id] = p
	return nil
}

func (r *PaymentRepo) MarkRefunded(_ context.Context, id, refundID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.Status != models.PaymentStatusCompleted {
		return models.ErrWriteConflict
	}
	p = copyPayment(p)
	p.Status = models.PaymentStatusRefunded
	p.RefundID, p.RefundReason = refundID, reason
	p.RefundedAt = &at
	p.UpdatedAt = at
	r.items[id] = p
	return nil
}

func (r *PaymentRepo) GetGatewayCustomer(_ context.Context, customerID string) (*models.GatewayCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gc, ok := r.customers[customerID]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return &gc, nil
}

func (r *PaymentRepo) SaveGatewayCustomer(_ context.Context, gc *models.GatewayCustomer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customers[gc.CustomerID]; exists {
		return models.ErrDuplicateKey
	}
	if gc.CreatedAt.IsZero() {
		gc.CreatedAt = time.Now().UTC()
	}
	r.customers[gc.CustomerID] = *gc
	return nil
}

// CountByStatus is used by tests.
func (r *PaymentRepo) CountByStatus(status string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.items {
		if p.Status == status {
			n++
		}
	}
	return n
}

func copyPayment(p models.Payment) models.Payment {
	p.FailureEventIDs = append([]string(nil), p.FailureEventIDs...)
	return p
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
