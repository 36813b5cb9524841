package commission

import (
	"context"
	"testing"

	memoryRepo "mentorly/database/repository/memory"
	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() *DefaultCommissionService {
	return &DefaultCommissionService{Repo: memoryRepo.NewCommissionRepo(), Logger: zap.NewNop()}
}

func TestCurrentFallsBackToDefault(t *testing.T) {
	cfg, err := newService().Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPlatformPercentage, cfg.PlatformPercentage)
	assert.True(t, cfg.IsActive)
	assert.Zero(t, cfg.Version)
}

func TestUpdateAppendsVersions(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, err := svc.Update(ctx, UpdateInput{PlatformPercentage: 12}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Nil(t, first.PreviousRate)

	off := false
	second, err := svc.Update(ctx, UpdateInput{PlatformPercentage: 20, IsActive: &off}, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	require.NotNil(t, second.PreviousRate)
	assert.Equal(t, 12.0, *second.PreviousRate)

	rates, err := svc.Rates(ctx)
	require.NoError(t, err)
	b, err := rates.Calculate(1000, models.ServiceTypeCourse)
	require.NoError(t, err)
	assert.Zero(t, b.PlatformCommission)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, 1, history[1].Version)
}

func TestUpdateValidates(t *testing.T) {
	_, err := newService().Update(context.Background(), UpdateInput{PlatformPercentage: 101}, "admin")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}
