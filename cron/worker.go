package cron

import (
	"context"
	"fmt"
	"time"

	"mentorly/config"
	"mentorly/models"
	"mentorly/services/tasks"
	"mentorly/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends one notification over whatever channels the worker has.
type Deliverer interface {
	Deliver(ctx context.Context, kind models.NotificationKind, n models.NotificationPayload) error
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient is the producer side used by notification.AsynqDispatcher.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(queueRedisOpt())
}

// InitNotificationWorker runs the notification worker in the background. The returned
// server is shut down by the caller.
func InitNotificationWorker(ctx context.Context, d Deliverer, logger *zap.Logger) *asynq.Server {
	logger = utils.LoggerOr(logger).Named("notify-worker")
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotifySend, handleNotifyTask(d, logger))

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("notification worker gave up; notifications stay queued")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleNotifyTask(d Deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotifyTask(task)
		if err != nil {
			logger.Error("dropping malformed notification task", zap.Error(err))
			return err
		}
		if p.Payload.RecipientID == "" && p.Payload.RecipientEmail == "" {
			logger.Warn("notification has no recipient", zap.String("kind", string(p.Kind)))
			return fmt.Errorf("notification %s has no recipient: %w", p.Kind, asynq.SkipRetry)
		}

		if err := d.Deliver(ctx, p.Kind, p.Payload); err != nil {
			logger.Warn("notification delivery failed, will retry",
				zap.String("kind", string(p.Kind)),
				zap.String("recipientID", p.Payload.RecipientID),
				zap.Error(err))
			return err
		}
		logger.Debug("notification delivered",
			zap.String("kind", string(p.Kind)), zap.String("recipientID", p.Payload.RecipientID))
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to surface outages in the logs.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
