package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealWindow is a promotional discount window already selected by the
// caller. Start and End are both inclusive: a stay night that falls on the
// end date still receives the discount.
type DealWindow struct {
	ID              string
	Name            string
	DiscountPercent decimal.Decimal
	Start           time.Time
	End             time.Time
}

// MonthCharge is the portion of a stay's charges attributable to one
// calendar month, including the pro-rated split between discounted and
// full-rate nights.
type MonthCharge struct {
	Month               time.Month
	Year                int
	Nights              int
	Rate                decimal.Decimal
	Subtotal            decimal.Decimal
	DealNights          int
	DealName            string
	DealDiscountPercent decimal.Decimal
	DealAmount          decimal.Decimal
}

// Charges is the full output of a charge calculation. Callers persist it as
// an immutable pricing snapshot so later rate or deal edits never change an
// already-created booking's price.
//
// Total always equals Subtotal: taxes are applied downstream by invoice
// generation, never here.
type Charges struct {
	TotalNights  int
	Months       []MonthCharge
	Subtotal     decimal.Decimal
	DealDiscount decimal.Decimal
	Total        decimal.Decimal
	DealApplied  bool
	DealName     string
	LineItems    []string
}
