package notifications

import (
	"context"
	"fmt"

	"innkeeper/pkg/kafka"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"
)

// Notifier turns booking and invoice events into guest notifications. Its
// handler methods plug into the kafka consumer; a handler error sends the
// message through the consumer's retry and DLQ path, so senders must
// tolerate redelivery.
type Notifier struct {
	sender Sender
	log    *logger.Logger
}

func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		log:    log,
	}
}

// HandleBookingEvent processes messages from the booking lifecycle topics.
func (n *Notifier) HandleBookingEvent(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}
	if event.GuestEmail == "" {
		n.log.Warn("booking event has no guest email, skipping",
			"booking_id", event.BookingID,
			"event_id", msg.GetEventID(),
		)
		return nil
	}

	var notification Notification
	switch msg.GetEventType() {
	case kafka.EventBookingConfirmed:
		notification = renderBookingConfirmed(event)
	case kafka.EventBookingCancelled:
		notification = renderBookingCancelled(event)
	default:
		n.log.Warn("unknown booking event type, skipping",
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
		)
		return nil
	}

	if err := n.sender.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to send booking notification: %w", err)
	}

	n.log.Info("booking notification sent",
		"booking_id", event.BookingID,
		"event_type", msg.GetEventType(),
		"recipient", notification.Recipient,
	)

	if msg.GetEventType() == kafka.EventBookingConfirmed && event.GuestPhone != "" {
		sms := renderCheckInReminderSMS(event)
		if err := n.sender.Send(ctx, sms); err != nil {
			// Email already went out; an SMS failure is not worth a redelivery.
			n.log.Warn("failed to send booking SMS",
				"booking_id", event.BookingID,
				"error", err,
			)
		}
	}

	return nil
}

// HandleInvoiceEvent processes messages from the invoice topic.
func (n *Notifier) HandleInvoiceEvent(ctx context.Context, msg kafka.Message) error {
	var event model.InvoiceEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode invoice event", err)
	}
	if event.GuestEmail == "" {
		n.log.Warn("invoice event has no guest email, skipping",
			"invoice_id", event.InvoiceID,
			"event_id", msg.GetEventID(),
		)
		return nil
	}

	notification := renderInvoiceIssued(event)
	if err := n.sender.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to send invoice notification: %w", err)
	}

	n.log.Info("invoice notification sent",
		"invoice_id", event.InvoiceID,
		"booking_id", event.BookingID,
		"recipient", notification.Recipient,
	)

	return nil
}
