package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type OfferingRepo struct {
	mu    sync.Mutex
	items map[string]models.Offering
}

func NewOfferingRepo() *OfferingRepo {
	return &OfferingRepo{items: make(map[string]models.Offering)}
}

func (r *OfferingRepo) Create(_ context.Context, o *models.Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if _, exists := r.items[o.ID]; exists {
		return models.ErrDuplicateKey
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	r.items[o.ID] = copyOffering(*o)
	return nil
}

func (r *OfferingRepo) GetByID(_ context.Context, id string) (*models.Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	out := copyOffering(o)
	return &out, nil
}

func (r *OfferingRepo) Update(_ context.Context, o *models.Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; !ok {
		return models.ErrRecordNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	r.items[o.ID] = copyOffering(*o)
	return nil
}

func (r *OfferingRepo) ListPublishedBySlotMode(_ context.Context, mode models.SlotMode) ([]models.Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Offering
	for _, o := range r.items {
		if o.Status == models.OfferingStatusPublished && o.SlotMode == mode {
			out = append(out, copyOffering(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyOffering(o models.Offering) models.Offering {
	o.ExplicitSlots = append([]models.ExplicitSlotEntry(nil), o.ExplicitSlots...)
	o.WeeklySchedule = append([]models.WeeklyScheduleEntry(nil), o.WeeklySchedule...)
	return o
}
