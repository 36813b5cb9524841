package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type TemplateRepo struct {
	mu    sync.Mutex
	items []models.AvailabilityTemplate
}

func NewTemplateRepo() *TemplateRepo { return &TemplateRepo{} }

func (r *TemplateRepo) Activate(_ context.Context, tmpl *models.AvailabilityTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	tmpl.IsActive = true
	tmpl.CreatedAt, tmpl.UpdatedAt = now, now
	for i := range r.items {
		if r.items[i].SpecialistID == tmpl.SpecialistID && r.items[i].IsActive {
			r.items[i].IsActive = false
			r.items[i].UpdatedAt = now
		}
	}
	r.items = append(r.items, *tmpl)
	return nil
}

func (r *TemplateRepo) GetActive(_ context.Context, specialistID string) (*models.AvailabilityTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.SpecialistID == specialistID && t.IsActive {
			out := t
			return &out, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *TemplateRepo) ListBySpecialist(_ context.Context, specialistID string) ([]models.AvailabilityTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AvailabilityTemplate
	for _, t := range r.items {
		if t.SpecialistID == specialistID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
