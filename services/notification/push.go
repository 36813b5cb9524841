package notification

import (
	"context"
	"fmt"

	"mentorly/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Pusher sends FCM messages to the per-recipient topic "user_<id>" that the apps subscribe to.
type Pusher struct {
	client *messaging.Client
}

func NewPusher(ctx context.Context, credentialsFile string) (*Pusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return &Pusher{client: client}, nil
}

func (p *Pusher) Name() string { return "push" }

func (p *Pusher) Deliver(ctx context.Context, kind models.NotificationKind, n models.NotificationPayload) error {
	if n.RecipientID == "" {
		return nil
	}
	_, err := p.client.Send(ctx, pushMessage(kind, n))
	return err
}

func pushMessage(kind models.NotificationKind, n models.NotificationPayload) *messaging.Message {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = string(kind)

	return &messaging.Message{
		Topic: "user_" + n.RecipientID,
		Notification: &messaging.Notification{
			Title: Subject(kind, n),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
}
