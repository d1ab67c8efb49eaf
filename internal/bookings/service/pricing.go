package service

import (
	"time"

	"github.com/shopspring/decimal"

	"innkeeper/pkg/billing"
	"innkeeper/pkg/model"
)

// The billing engine computes in decimals; stored snapshots carry plain
// floats already rounded to cents, so the conversions below are lossless
// for any realistic rate.

func buildMonthlyRates(room *model.Room) []decimal.Decimal {
	if len(room.MonthlyRates) == 0 {
		return nil
	}
	rates := make([]decimal.Decimal, len(room.MonthlyRates))
	for i, r := range room.MonthlyRates {
		rates[i] = decimal.NewFromFloat(r)
	}
	return rates
}

func buildDealWindow(deal *model.Deal) *billing.DealWindow {
	if deal == nil {
		return nil
	}
	return &billing.DealWindow{
		ID:              deal.ID,
		Name:            deal.Name,
		DiscountPercent: decimal.NewFromFloat(deal.DiscountPercent),
		Start:           deal.StartDate,
		End:             deal.EndDate,
	}
}

func chargesToSnapshot(calc billing.Charges) *model.PricingSnapshot {
	snap := &model.PricingSnapshot{
		TotalNights:  calc.TotalNights,
		Months:       make([]model.MonthCharge, len(calc.Months)),
		Subtotal:     calc.Subtotal.InexactFloat64(),
		DealDiscount: calc.DealDiscount.InexactFloat64(),
		Total:        calc.Total.InexactFloat64(),
		DealApplied:  calc.DealApplied,
		DealName:     calc.DealName,
		LineItems:    calc.LineItems,
	}
	for i, mc := range calc.Months {
		snap.Months[i] = model.MonthCharge{
			Month:               int(mc.Month),
			MonthName:           mc.Month.String(),
			Year:                mc.Year,
			Nights:              mc.Nights,
			Rate:                mc.Rate.InexactFloat64(),
			Subtotal:            mc.Subtotal.InexactFloat64(),
			DealNights:          mc.DealNights,
			DealName:            mc.DealName,
			DealDiscountPercent: mc.DealDiscountPercent.InexactFloat64(),
			DealAmount:          mc.DealAmount.InexactFloat64(),
		}
	}
	return snap
}

// snapshotToCharges rebuilds the engine's view of a persisted snapshot so
// stored bookings can re-render their bill summary text.
func snapshotToCharges(snap *model.PricingSnapshot) billing.Charges {
	calc := billing.Charges{
		TotalNights:  snap.TotalNights,
		Months:       make([]billing.MonthCharge, len(snap.Months)),
		Subtotal:     decimal.NewFromFloat(snap.Subtotal),
		DealDiscount: decimal.NewFromFloat(snap.DealDiscount),
		Total:        decimal.NewFromFloat(snap.Total),
		DealApplied:  snap.DealApplied,
		DealName:     snap.DealName,
		LineItems:    snap.LineItems,
	}
	for i, mc := range snap.Months {
		calc.Months[i] = billing.MonthCharge{
			Month:               time.Month(mc.Month),
			Year:                mc.Year,
			Nights:              mc.Nights,
			Rate:                decimal.NewFromFloat(mc.Rate),
			Subtotal:            decimal.NewFromFloat(mc.Subtotal),
			DealNights:          mc.DealNights,
			DealName:            mc.DealName,
			DealDiscountPercent: decimal.NewFromFloat(mc.DealDiscountPercent),
			DealAmount:          decimal.NewFromFloat(mc.DealAmount),
		}
	}
	return calc
}
