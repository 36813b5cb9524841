package cron

import (
	"context"
	"time"

	"mentorly/utils"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HorizonExtender keeps materialized slots reaching the configured horizon.
type HorizonExtender interface {
	ExtendHorizon(ctx context.Context) (int, error)
}

const horizonRunTimeout = 10 * time.Minute

// StartHorizonJob schedules ExtendHorizon on spec (standard five-field cron, UTC).
// Overlapping runs are skipped. Stop the returned scheduler on shutdown.
func StartHorizonJob(spec string, ext HorizonExtender, logger *zap.Logger) (*robfig.Cron, error) {
	logger = utils.LoggerOr(logger).Named("horizon")
	c := robfig.New(
		robfig.WithLocation(time.UTC),
		robfig.WithChain(robfig.SkipIfStillRunning(robfig.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { runHorizon(context.Background(), ext, logger) }); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("slot horizon job scheduled", zap.String("spec", spec))
	return c, nil
}

func runHorizon(ctx context.Context, ext HorizonExtender, logger *zap.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, horizonRunTimeout)
	defer cancel()
	start := time.Now()
	added, err := ext.ExtendHorizon(ctx)
	if err != nil {
		logger.Error("slot horizon extension failed", zap.Int("added", added), zap.Error(err))
		return added
	}
	logger.Info("slot horizon extended", zap.Int("added", added), zap.Duration("took", time.Since(start)))
	return added
}
