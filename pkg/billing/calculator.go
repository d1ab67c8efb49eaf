// Package billing computes booking charges for a stay against month-indexed
// nightly rates and an optional promotional discount window.
//
// Everything in this package is pure and deterministic: no I/O, no clock
// reads, no shared state. Identical inputs always produce identical output,
// which is what allows the result to be persisted verbatim as a pricing
// snapshot and replayed later for invoices and disputes.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

const nightLength = 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Calculate reconciles the half-open stay [checkIn, checkOut) against the
// monthly rate table, producing one MonthCharge per calendar month the stay
// touches plus aggregate totals and invoice-ready line items.
//
// monthlyRates holds up to 12 nightly rates, index 0 = January. A missing or
// zero slot falls back to baseRate; a genuinely free month must therefore be
// modeled as a 100% deal, not a zero rate.
//
// A degenerate range (checkOut <= checkIn) still bills exactly one night so
// that TotalNights and the month breakdown agree. Validating date ordering
// remains the caller's job; this function never fails.
//
// Nights are calendar nights: all inputs collapse onto day boundaries before
// counting, so clock times carried by the caller's timestamps never change
// what a guest owes and the month segments always sum to TotalNights.
func Calculate(checkIn, checkOut time.Time, monthlyRates []decimal.Decimal, baseRate decimal.Decimal, deal *DealWindow) Charges {
	checkIn = startOfDay(checkIn)
	checkOut = startOfDay(checkOut)
	if deal != nil {
		d := *deal
		d.Start = startOfDay(d.Start)
		d.End = startOfDay(d.End)
		deal = &d
	}

	calc := Charges{
		TotalNights:  maxInt(1, nightsBetween(checkIn, checkOut)),
		Subtotal:     decimal.Zero,
		DealDiscount: decimal.Zero,
	}

	cursor := checkIn
	end := checkOut
	if !end.After(cursor) {
		// single 1-night segment, consistent with the floored TotalNights
		end = cursor.Add(nightLength)
	}

	for cursor.Before(end) {
		segEnd := firstOfNextMonth(cursor)
		if segEnd.After(end) {
			segEnd = end
		}

		rate := rateFor(monthlyRates, cursor.Month(), baseRate)
		mc := MonthCharge{
			Month:      cursor.Month(),
			Year:       cursor.Year(),
			Nights:     nightsBetween(cursor, segEnd),
			Rate:       rate,
			DealAmount: decimal.Zero,
		}

		if deal != nil {
			dealNights := overlapNights(cursor, segEnd, deal.Start, deal.End)
			if dealNights > mc.Nights {
				dealNights = mc.Nights
			}
			if dealNights > 0 {
				mc.DealNights = dealNights
				mc.DealName = deal.Name
				mc.DealDiscountPercent = deal.DiscountPercent
				mc.DealAmount = rate.
					Mul(deal.DiscountPercent).
					Div(hundred).
					Mul(decimal.NewFromInt(int64(dealNights))).
					Round(2)
				calc.DealApplied = true
				calc.DealName = deal.Name
			}
		}

		mc.Subtotal = rate.
			Mul(decimal.NewFromInt(int64(mc.Nights))).
			Sub(mc.DealAmount).
			Round(2)

		calc.Months = append(calc.Months, mc)
		calc.Subtotal = calc.Subtotal.Add(mc.Subtotal)
		calc.DealDiscount = calc.DealDiscount.Add(mc.DealAmount)

		cursor = segEnd
	}

	calc.Total = calc.Subtotal
	calc.LineItems = LineItemDescriptions(calc)
	return calc
}

// nightsBetween counts nights as the millisecond difference divided by one
// night, rounded up. Partial nights bill as whole nights.
func nightsBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	nights := int(d / nightLength)
	if d%nightLength > 0 {
		nights++
	}
	return nights
}

// overlapNights measures the overlap between the half-open segment
// [segStart, segEnd) and the inclusive deal window [dealStart, dealEnd].
func overlapNights(segStart, segEnd, dealStart, dealEnd time.Time) int {
	start := segStart
	if dealStart.After(start) {
		start = dealStart
	}
	end := segEnd
	if dealEnd.Before(end) {
		end = dealEnd
	}
	if !start.Before(end) {
		return 0
	}
	return nightsBetween(start, end)
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func rateFor(monthlyRates []decimal.Decimal, month time.Month, baseRate decimal.Decimal) decimal.Decimal {
	idx := int(month) - 1
	if idx < len(monthlyRates) && !monthlyRates[idx].IsZero() {
		return monthlyRates[idx]
	}
	return baseRate
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
