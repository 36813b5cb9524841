package notification

import (
	"context"
	"fmt"

	"mentorly/models"
	"mentorly/services/tasks"
	"mentorly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher hands a notification off for delivery. Implementations must not block on the
// delivery channels themselves.
type Dispatcher interface {
	Notify(ctx context.Context, kind models.NotificationKind, p models.NotificationPayload) error
}

// AsynqDispatcher queues notifications for the worker in cron/worker.go.
type AsynqDispatcher struct {
	Client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{Client: client}
}

func (d *AsynqDispatcher) Notify(ctx context.Context, kind models.NotificationKind, p models.NotificationPayload) error {
	task, opts, err := tasks.NewNotifyTask(kind, p)
	if err != nil {
		return err
	}
	if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}

// LogDispatcher only logs. Used when no queue is configured.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d *LogDispatcher) Notify(_ context.Context, kind models.NotificationKind, p models.NotificationPayload) error {
	utils.LoggerOr(d.Logger).Info("notification",
		zap.String("kind", string(kind)),
		zap.String("recipientID", p.RecipientID),
		zap.Any("data", p.Data))
	return nil
}

// Send dispatches and swallows the error. Notifications never fail the operation that
// triggered them.
func Send(ctx context.Context, d Dispatcher, logger *zap.Logger, kind models.NotificationKind, p models.NotificationPayload) {
	if d == nil {
		return
	}
	if err := d.Notify(ctx, kind, p); err != nil {
		utils.LoggerOr(logger).Warn("notification dispatch failed",
			zap.String("kind", string(kind)),
			zap.String("recipientID", p.RecipientID),
			zap.Error(err))
	}
}
