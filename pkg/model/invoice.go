package model

import (
	"time"
)

type Invoice struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Number    string        `json:"number" bson:"number" validate:"required"`
	BookingID string        `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	Lines     []InvoiceLine `json:"lines" bson:"lines" validate:"required,min=1,dive"`
	Subtotal  float64       `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	TaxRate   float64       `json:"tax_rate" bson:"tax_rate" validate:"gte=0,lte=1"`
	Tax       float64       `json:"tax" bson:"tax" validate:"gte=0"`
	Total     float64       `json:"total" bson:"total" validate:"gte=0"`
	Summary   string        `json:"summary" bson:"summary"`
	IssuedAt  time.Time     `json:"issued_at" bson:"issued_at" validate:"omitempty"`
}

type InvoiceLine struct {
	Description string  `json:"description" bson:"description" validate:"required"`
	Amount      float64 `json:"amount" bson:"amount"`
}
