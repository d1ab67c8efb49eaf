package model

import (
	"time"
)

type Booking struct {
	ID         string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string           `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestName  string           `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail string           `json:"guest_email" bson:"guest_email" validate:"required,email"`
	GuestPhone string           `json:"guest_phone,omitempty" bson:"guest_phone" validate:"omitempty,e164"`
	CheckIn    time.Time        `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time        `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Status     string           `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled checked_out"`
	Pricing    *PricingSnapshot `json:"pricing,omitempty" bson:"pricing" validate:"omitempty"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type BookingUpdate struct {
	GuestName  string     `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	GuestEmail string     `json:"guest_email,omitempty" validate:"omitempty,email"`
	GuestPhone string     `json:"guest_phone,omitempty" validate:"omitempty,e164"`
	CheckIn    *time.Time `json:"check_in,omitempty" validate:"omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty" validate:"omitempty"`
	Status     string     `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled checked_out"`
}

// PricingSnapshot is the denormalized copy of a charge calculation, stored
// on the booking at creation time. It is never recomputed: later rate or
// deal edits must not retroactively change what the guest was quoted.
type PricingSnapshot struct {
	TotalNights  int           `json:"total_nights" bson:"total_nights"`
	Months       []MonthCharge `json:"months" bson:"months"`
	Subtotal     float64       `json:"subtotal" bson:"subtotal"`
	DealDiscount float64       `json:"deal_discount" bson:"deal_discount"`
	Total        float64       `json:"total" bson:"total"`
	DealApplied  bool          `json:"deal_applied" bson:"deal_applied"`
	DealName     string        `json:"deal_name,omitempty" bson:"deal_name,omitempty"`
	LineItems    []string      `json:"line_items" bson:"line_items"`
}

// MonthCharge is one calendar month's share of a pricing snapshot.
// Month is 1-12 as in time.Month.
type MonthCharge struct {
	Month               int     `json:"month" bson:"month"`
	MonthName           string  `json:"month_name" bson:"month_name"`
	Year                int     `json:"year" bson:"year"`
	Nights              int     `json:"nights" bson:"nights"`
	Rate                float64 `json:"rate" bson:"rate"`
	Subtotal            float64 `json:"subtotal" bson:"subtotal"`
	DealNights          int     `json:"deal_nights,omitempty" bson:"deal_nights,omitempty"`
	DealName            string  `json:"deal_name,omitempty" bson:"deal_name,omitempty"`
	DealDiscountPercent float64 `json:"deal_discount_percent,omitempty" bson:"deal_discount_percent,omitempty"`
	DealAmount          float64 `json:"deal_amount,omitempty" bson:"deal_amount,omitempty"`
}
