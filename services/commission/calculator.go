package commission

import (
	"fmt"

	"mentorly/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the split of one gross amount, in minor units.
type Breakdown struct {
	Gross              int64   `json:"gross"`
	PlatformCommission int64   `json:"platformCommission"`
	SpecialistEarnings int64   `json:"specialistEarnings"`
	Percentage         float64 `json:"percentage"`
}

// Rates is a resolved commission config: every service type has its percentage.
type Rates struct {
	Version       int
	Active        bool
	MinimumCharge int64
	byType        map[models.ServiceType]decimal.Decimal
}

// NewRates resolves per-type overrides against the platform percentage.
func NewRates(cfg models.CommissionConfig) (Rates, error) {
	if err := checkPercentage("platformPercentage", cfg.PlatformPercentage); err != nil {
		return Rates{}, err
	}
	if cfg.MinimumChargeAmount < 0 {
		return Rates{}, &models.ValidationError{Message: "minimumChargeAmount must not be negative"}
	}
	r := Rates{
		Version:       cfg.Version,
		Active:        cfg.IsActive,
		MinimumCharge: cfg.MinimumChargeAmount,
		byType:        make(map[models.ServiceType]decimal.Decimal, len(models.AllServiceTypes)),
	}
	for _, t := range models.AllServiceTypes {
		r.byType[t] = decimal.NewFromFloat(cfg.PlatformPercentage)
	}
	for t, pct := range cfg.ByServiceType {
		if !t.Valid() {
			return Rates{}, &models.ValidationError{Message: fmt.Sprintf("unknown service type %q", t)}
		}
		if err := checkPercentage("byServiceType."+string(t), pct); err != nil {
			return Rates{}, err
		}
		r.byType[t] = decimal.NewFromFloat(pct)
	}
	return r, nil
}

func checkPercentage(field string, pct float64) error {
	if pct < 0 || pct > 100 {
		return &models.ValidationError{Message: fmt.Sprintf("%s must be between 0 and 100", field)}
	}
	return nil
}

// Percentage is the effective rate for t; zero when the config is inactive.
func (r Rates) Percentage(t models.ServiceType) float64 {
	if !r.Active {
		return 0
	}
	pct, _ := r.byType[t].Float64()
	return pct
}

// Calculate splits amount. Commission is rounded half-up and earnings are the remainder,
// so the two always add up to the gross.
func (r Rates) Calculate(amount int64, t models.ServiceType) (Breakdown, error) {
	if amount < 0 {
		return Breakdown{}, &models.ValidationError{Message: "amount must not be negative"}
	}
	pct, ok := r.byType[t]
	if !ok {
		return Breakdown{}, &models.ValidationError{Message: fmt.Sprintf("unknown service type %q", t)}
	}
	if !r.Active {
		return Breakdown{Gross: amount, SpecialistEarnings: amount}, nil
	}

	// Round is half away from zero, which is half-up for non-negative amounts.
	cut := decimal.NewFromInt(amount).Mul(pct).Div(hundred).Round(0).IntPart()
	f, _ := pct.Float64()
	return Breakdown{
		Gross:              amount,
		PlatformCommission: cut,
		SpecialistEarnings: amount - cut,
		Percentage:         f,
	}, nil
}
