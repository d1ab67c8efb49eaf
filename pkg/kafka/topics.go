package kafka

// Topics carrying booking lifecycle events. Each topic has a sibling DLQ
// topic for messages that exhaust their retries.
const (
	TopicBookingConfirmed    = "booking.confirmed"
	TopicBookingCancelled    = "booking.cancelled"
	TopicInvoiceIssued       = "invoice.issued"
	TopicBookingConfirmedDLQ = "booking.confirmed.dlq"
	TopicBookingCancelledDLQ = "booking.cancelled.dlq"
	TopicInvoiceIssuedDLQ    = "invoice.issued.dlq"
)

// Event types set in the event-type header.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventInvoiceIssued    = "invoice.issued"
)
