package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mentorly/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends a plain-text email when the payload carries an address.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	return &Mailer{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (m *Mailer) Name() string { return "email" }

func (m *Mailer) Deliver(_ context.Context, kind models.NotificationKind, n models.NotificationPayload) error {
	if n.RecipientEmail == "" {
		return nil
	}
	return m.dialer.DialAndSend(emailMessage(m.from, kind, n))
}

func emailMessage(from string, kind models.NotificationKind, n models.NotificationPayload) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", n.RecipientEmail)
	msg.SetHeader("Subject", Subject(kind, n))
	msg.SetBody("text/plain", plainBody(n.Data))
	return msg
}

// plainBody lists the data fields; templated bodies are rendered elsewhere.
func plainBody(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, data[k])
	}
	return b.String()
}
