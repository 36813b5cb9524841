package tasks

import (
	"encoding/json"
	"fmt"

	"mentorly/models"

	"github.com/hibiken/asynq"
)

const TypeNotifySend = "notify:send"

// NotifyPayload is the queued form of one notification.
type NotifyPayload struct {
	Kind    models.NotificationKind    `json:"kind"`
	Payload models.NotificationPayload `json:"payload"`
}

func NewNotifyTask(kind models.NotificationKind, p models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(NotifyPayload{Kind: kind, Payload: p})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotifySend, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Queue("default")}

	return task, opts, nil
}

func ParseNotifyTask(t *asynq.Task) (NotifyPayload, error) {
	var p NotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w: %v", TypeNotifySend, asynq.SkipRetry, err)
	}
	return p, nil
}
