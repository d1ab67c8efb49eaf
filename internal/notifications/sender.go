package notifications

import (
	"context"

	"innkeeper/pkg/logger"
)

// Notification is a rendered message ready for delivery.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
	Channel   string
}

// Channels a notification can be delivered on.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Sender delivers a rendered notification. Implementations wrap a mail
// relay, an SMS gateway, or in development just the log.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the structured log instead of
// delivering them. Used in development and as the default sender.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info("notification",
		"channel", n.Channel,
		"recipient", n.Recipient,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}
