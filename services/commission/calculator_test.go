package commission

import (
	"testing"

	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRatesResolvesEveryServiceType(t *testing.T) {
	r, err := NewRates(models.CommissionConfig{
		PlatformPercentage: 15,
		ByServiceType:      map[models.ServiceType]float64{models.ServiceTypeWebinar: 5},
		IsActive:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, r.Percentage(models.ServiceTypeCourse))
	assert.Equal(t, 15.0, r.Percentage(models.ServiceTypeConsulting))
	assert.Equal(t, 5.0, r.Percentage(models.ServiceTypeWebinar))
}

func TestNewRatesRejectsBadConfig(t *testing.T) {
	var ve *models.ValidationError
	_, err := NewRates(models.CommissionConfig{PlatformPercentage: 120})
	require.ErrorAs(t, err, &ve)
	_, err = NewRates(models.CommissionConfig{PlatformPercentage: 10, ByServiceType: map[models.ServiceType]float64{"yoga": 3}})
	require.ErrorAs(t, err, &ve)
	_, err = NewRates(models.CommissionConfig{PlatformPercentage: 10, MinimumChargeAmount: -1})
	require.ErrorAs(t, err, &ve)
}

func TestCalculate(t *testing.T) {
	r, err := NewRates(models.CommissionConfig{
		PlatformPercentage: 10,
		ByServiceType:      map[models.ServiceType]float64{models.ServiceTypeConsulting: 12.5},
		IsActive:           true,
	})
	require.NoError(t, err)

	cases := []struct {
		name       string
		amount     int64
		typ        models.ServiceType
		commission int64
	}{
		{"plain", 10000, models.ServiceTypeCourse, 1000},
		{"half rounds up", 5, models.ServiceTypeCourse, 1},
		{"below half rounds down", 4, models.ServiceTypeCourse, 0},
		{"override", 1000, models.ServiceTypeConsulting, 125},
		{"override half", 4, models.ServiceTypeConsulting, 1},
		{"zero", 0, models.ServiceTypeWebinar, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := r.Calculate(tc.amount, tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.commission, b.PlatformCommission)
			assert.Equal(t, tc.amount-tc.commission, b.SpecialistEarnings)
			assert.Equal(t, tc.amount, b.Gross)
		})
	}
}

func TestCalculateInactiveConfigTakesNothing(t *testing.T) {
	r, err := NewRates(models.CommissionConfig{PlatformPercentage: 30, IsActive: false})
	require.NoError(t, err)
	b, err := r.Calculate(9999, models.ServiceTypeCourse)
	require.NoError(t, err)
	assert.Zero(t, b.PlatformCommission)
	assert.Equal(t, int64(9999), b.SpecialistEarnings)
	assert.Zero(t, b.Percentage)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	r, err := NewRates(models.CommissionConfig{PlatformPercentage: 10, IsActive: true})
	require.NoError(t, err)
	var ve *models.ValidationError
	_, err = r.Calculate(-1, models.ServiceTypeCourse)
	require.ErrorAs(t, err, &ve)
	_, err = r.Calculate(100, "yoga")
	require.ErrorAs(t, err, &ve)
}

func TestCalculateSumInvariant(t *testing.T) {
	pcts := []float64{0, 0.5, 1, 2.5, 7.75, 10, 12.345, 33.3333, 50, 99.99, 100}
	for _, pct := range pcts {
		r, err := NewRates(models.CommissionConfig{PlatformPercentage: pct, IsActive: true})
		require.NoError(t, err)
		for amount := int64(0); amount < 2000; amount += 7 {
			b, err := r.Calculate(amount, models.ServiceTypeCourse)
			require.NoError(t, err)
			require.Equal(t, amount, b.PlatformCommission+b.SpecialistEarnings, "pct=%v amount=%d", pct, amount)
			require.GreaterOrEqual(t, b.PlatformCommission, int64(0))
			require.LessOrEqual(t, b.PlatformCommission, amount)
		}
	}
}
