package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type CommissionRepo struct {
	mu    sync.Mutex
	items []models.CommissionConfig
}

func NewCommissionRepo() *CommissionRepo { return &CommissionRepo{} }

func (r *CommissionRepo) Insert(_ context.Context, cfg *models.CommissionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Version == cfg.Version {
			return models.ErrWriteConflict
		}
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, copyCommission(*cfg))
	return nil
}

func (r *CommissionRepo) Latest(_ context.Context) (*models.CommissionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return nil, models.ErrRecordNotFound
	}
	best := r.items[0]
	for _, c := range r.items[1:] {
		if c.Version > best.Version {
			best = c
		}
	}
	out := copyCommission(best)
	return &out, nil
}

func (r *CommissionRepo) History(_ context.Context, limit int64) ([]models.CommissionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CommissionConfig, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, copyCommission(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyCommission(c models.CommissionConfig) models.CommissionConfig {
	if c.ByServiceType != nil {
		m := make(map[models.ServiceType]float64, len(c.ByServiceType))
		for k, v := range c.ByServiceType {
			m[k] = v
		}
		c.ByServiceType = m
	}
	return c
}
