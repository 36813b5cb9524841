package commission

import (
	"context"
	"errors"
	"time"

	commissionRepo "mentorly/database/repository/commission"
	"mentorly/models"
	"mentorly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPlatformPercentage applies until an admin stores the first config.
const DefaultPlatformPercentage = 10.0

type CommissionService interface {
	Current(ctx context.Context) (*models.CommissionConfig, error)
	Rates(ctx context.Context) (Rates, error)
	Update(ctx context.Context, in UpdateInput, actor string) (*models.CommissionConfig, error)
	History(ctx context.Context, limit int64) ([]models.CommissionConfig, error)
}

// UpdateInput describes the next config version.
type UpdateInput struct {
	PlatformPercentage  float64                        `json:"platformPercentage" validate:"gte=0,lte=100"`
	ByServiceType       map[models.ServiceType]float64 `json:"byServiceType"`
	MinimumChargeAmount int64                          `json:"minimumChargeAmount" validate:"gte=0"`
	IsActive            *bool                          `json:"isActive"`
	EffectiveDate       *time.Time                     `json:"effectiveDate"`
}

type DefaultCommissionService struct {
	Repo   commissionRepo.CommissionRepository
	Logger *zap.Logger
}

func defaultConfig() *models.CommissionConfig {
	return &models.CommissionConfig{
		PlatformPercentage: DefaultPlatformPercentage,
		IsActive:           true,
	}
}

// Current returns the latest version, or the built-in default before any exists.
func (s *DefaultCommissionService) Current(ctx context.Context) (*models.CommissionConfig, error) {
	cfg, err := s.Repo.Latest(ctx)
	if errors.Is(err, models.ErrRecordNotFound) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *DefaultCommissionService) Rates(ctx context.Context) (Rates, error) {
	cfg, err := s.Current(ctx)
	if err != nil {
		return Rates{}, err
	}
	return NewRates(*cfg)
}

// Update appends version N+1. Racing admins collide on the version index; the loser
// gets the conflict back rather than silently overwriting.
func (s *DefaultCommissionService) Update(ctx context.Context, in UpdateInput, actor string) (*models.CommissionConfig, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	prev, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := &models.CommissionConfig{
		ID:                  uuid.New().String(),
		Version:             prev.Version + 1,
		PlatformPercentage:  in.PlatformPercentage,
		ByServiceType:       in.ByServiceType,
		MinimumChargeAmount: in.MinimumChargeAmount,
		IsActive:            true,
		EffectiveDate:       now,
		CreatedBy:           actor,
		CreatedAt:           now,
	}
	if in.IsActive != nil {
		next.IsActive = *in.IsActive
	}
	if in.EffectiveDate != nil {
		next.EffectiveDate = in.EffectiveDate.UTC()
	}
	if prev.Version > 0 {
		rate := prev.PlatformPercentage
		next.PreviousRate = &rate
	}
	if _, err := NewRates(*next); err != nil {
		return nil, err
	}

	if err := s.Repo.Insert(ctx, next); err != nil {
		if errors.Is(err, models.ErrWriteConflict) {
			return nil, &models.BusyError{Key: "commission config"}
		}
		return nil, err
	}
	utils.LoggerOr(s.Logger).Info("commission config updated",
		zap.Int("version", next.Version),
		zap.Float64("platformPercentage", next.PlatformPercentage),
		zap.Bool("active", next.IsActive),
		zap.String("actor", actor))
	return next, nil
}

func (s *DefaultCommissionService) History(ctx context.Context, limit int64) ([]models.CommissionConfig, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Repo.History(ctx, limit)
}
