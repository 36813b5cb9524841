package models

// NotificationKind names the message template the delivery side renders.
type NotificationKind string

const (
	NotifyBookingConfirmed       NotificationKind = "booking_confirmed"
	NotifyBookingSetupIncomplete NotificationKind = "booking_setup_incomplete"
	NotifyBookingCancelled       NotificationKind = "booking_cancelled"
	NotifyPaymentSucceeded       NotificationKind = "payment_succeeded"
	NotifyPaymentReceived        NotificationKind = "payment_received"
	NotifyPaymentFailed          NotificationKind = "payment_failed"
	NotifyPaymentRefunded        NotificationKind = "payment_refunded"
)

// NotificationPayload is the data handed to the notification collaborator.
type NotificationPayload struct {
	RecipientID    string            `json:"recipientId"`
	RecipientEmail string            `json:"recipientEmail,omitempty"`
	Subject        string            `json:"subject,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
}
