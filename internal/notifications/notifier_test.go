package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"innkeeper/pkg/kafka"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"
)

type recordingSender struct {
	sent []Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func bookingEvent() model.BookingEvent {
	return model.BookingEvent{
		BookingID:  "507f1f77bcf86cd799439022",
		RoomID:     "507f1f77bcf86cd799439011",
		RoomNumber: "101",
		GuestName:  "Alice Smith",
		GuestEmail: "alice@example.com",
		CheckIn:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:     "confirmed",
		Pricing: &model.PricingSnapshot{
			TotalNights: 2,
			Subtotal:    200,
			Total:       200,
			LineItems:   []string{"March 2026: 2 nights @ $100.00/night = $200.00"},
		},
	}
}

func eventMessage(t *testing.T, eventType string, payload any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return kafka.NewMessage().
		WithKey("507f1f77bcf86cd799439022").
		WithRawValue(value).
		WithEventType(eventType).
		Build()
}

func TestHandleBookingEvent_Confirmed(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	msg := eventMessage(t, kafka.EventBookingConfirmed, bookingEvent())
	if err := n.HandleBookingEvent(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}
	sent := sender.sent[0]
	if sent.Channel != ChannelEmail {
		t.Errorf("expected email channel, got %s", sent.Channel)
	}
	if sent.Recipient != "alice@example.com" {
		t.Errorf("unexpected recipient %s", sent.Recipient)
	}
	if !strings.Contains(sent.Body, "Room: 101") {
		t.Errorf("body missing room number:\n%s", sent.Body)
	}
	if !strings.Contains(sent.Body, "March 2026: 2 nights @ $100.00/night = $200.00") {
		t.Errorf("body missing charge lines:\n%s", sent.Body)
	}
	if !strings.Contains(sent.Body, "Total: $200.00") {
		t.Errorf("body missing total:\n%s", sent.Body)
	}
}

func TestHandleBookingEvent_ConfirmedWithPhoneSendsSMS(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	event := bookingEvent()
	event.GuestPhone = "+15551234567"
	msg := eventMessage(t, kafka.EventBookingConfirmed, event)
	if err := n.HandleBookingEvent(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected email plus SMS, got %d notifications", len(sender.sent))
	}
	sms := sender.sent[1]
	if sms.Channel != ChannelSMS {
		t.Errorf("expected sms channel, got %s", sms.Channel)
	}
	if sms.Recipient != "+15551234567" {
		t.Errorf("unexpected sms recipient %s", sms.Recipient)
	}
}

func TestHandleBookingEvent_Cancelled(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	msg := eventMessage(t, kafka.EventBookingCancelled, bookingEvent())
	if err := n.HandleBookingEvent(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}
	if sender.sent[0].Subject != "Booking cancelled" {
		t.Errorf("unexpected subject %s", sender.sent[0].Subject)
	}
}

func TestHandleBookingEvent_UnknownTypeIsSkipped(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	msg := eventMessage(t, "booking.unknown", bookingEvent())
	if err := n.HandleBookingEvent(context.Background(), msg); err != nil {
		t.Fatalf("unknown event types must not error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("unknown event types must not send, got %d", len(sender.sent))
	}
}

func TestHandleBookingEvent_BadPayloadIsPermanent(t *testing.T) {
	n := NewNotifier(&recordingSender{}, testLogger())

	msg := kafka.NewMessage().
		WithKey("k").
		WithRawValue([]byte("{not json")).
		WithEventType(kafka.EventBookingConfirmed).
		Build()

	err := n.HandleBookingEvent(context.Background(), msg)
	if err == nil {
		t.Fatal("expected an error")
	}
	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) || kafkaErr.Type != kafka.ErrorTypePermanent {
		t.Fatalf("expected a permanent error, got %v", err)
	}
}

func TestHandleBookingEvent_SendFailurePropagates(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp unreachable")}
	n := NewNotifier(sender, testLogger())

	msg := eventMessage(t, kafka.EventBookingConfirmed, bookingEvent())
	if err := n.HandleBookingEvent(context.Background(), msg); err == nil {
		t.Fatal("send failures must surface so the consumer can retry")
	}
}

func TestHandleInvoiceEvent(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	event := model.InvoiceEvent{
		InvoiceID:  "507f1f77bcf86cd799439044",
		Number:     "INV-TEST",
		BookingID:  "507f1f77bcf86cd799439022",
		GuestName:  "Alice Smith",
		GuestEmail: "alice@example.com",
		Subtotal:   200,
		Tax:        20,
		Total:      220,
		Summary:    "Total nights: 2\n",
		IssuedAt:   time.Now().UTC(),
	}
	msg := eventMessage(t, kafka.EventInvoiceIssued, event)
	if err := n.HandleInvoiceEvent(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}
	sent := sender.sent[0]
	if sent.Subject != "Invoice INV-TEST" {
		t.Errorf("unexpected subject %s", sent.Subject)
	}
	if !strings.Contains(sent.Body, "Amount due: $220.00") {
		t.Errorf("body missing amount due:\n%s", sent.Body)
	}
	if !strings.Contains(sent.Body, "Total nights: 2") {
		t.Errorf("body missing bill summary:\n%s", sent.Body)
	}
}

func TestHandleInvoiceEvent_NoEmailIsSkipped(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, testLogger())

	msg := eventMessage(t, kafka.EventInvoiceIssued, model.InvoiceEvent{InvoiceID: "x"})
	if err := n.HandleInvoiceEvent(context.Background(), msg); err != nil {
		t.Fatalf("events without an email must not error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("events without an email must not send, got %d", len(sender.sent))
	}
}
