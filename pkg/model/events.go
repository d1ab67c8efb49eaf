package model

import (
	"time"
)

// BookingEvent is the payload published on booking lifecycle topics. It
// carries everything the notifier needs so consumers never read the
// database.
type BookingEvent struct {
	BookingID  string           `json:"booking_id"`
	RoomID     string           `json:"room_id"`
	RoomNumber string           `json:"room_number,omitempty"`
	GuestName  string           `json:"guest_name"`
	GuestEmail string           `json:"guest_email"`
	GuestPhone string           `json:"guest_phone,omitempty"`
	CheckIn    time.Time        `json:"check_in"`
	CheckOut   time.Time        `json:"check_out"`
	Status     string           `json:"status"`
	Pricing    *PricingSnapshot `json:"pricing,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// InvoiceEvent is the payload published when an invoice is issued.
type InvoiceEvent struct {
	InvoiceID  string    `json:"invoice_id"`
	Number     string    `json:"number"`
	BookingID  string    `json:"booking_id"`
	GuestName  string    `json:"guest_name,omitempty"`
	GuestEmail string    `json:"guest_email,omitempty"`
	Subtotal   float64   `json:"subtotal"`
	Tax        float64   `json:"tax"`
	Total      float64   `json:"total"`
	Summary    string    `json:"summary"`
	IssuedAt   time.Time `json:"issued_at"`
}
