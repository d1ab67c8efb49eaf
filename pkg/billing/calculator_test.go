package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func flatRates(rate float64) []decimal.Decimal {
	rates := make([]decimal.Decimal, 12)
	for i := range rates {
		rates[i] = decimal.NewFromFloat(rate)
	}
	return rates
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestCalculate_SingleMonthNoDeal(t *testing.T) {
	calc := Calculate(date(2026, time.January, 15), date(2026, time.January, 20), flatRates(100), money(100), nil)

	assert.Equal(t, 5, calc.TotalNights)
	assert.False(t, calc.DealApplied)
	assert.True(t, calc.DealDiscount.IsZero(), "deal discount should be zero, got %s", calc.DealDiscount)
	assert.True(t, calc.Subtotal.Equal(money(500)), "subtotal = %s", calc.Subtotal)
	assert.True(t, calc.Total.Equal(money(500)), "total = %s", calc.Total)

	require.Len(t, calc.Months, 1)
	mc := calc.Months[0]
	assert.Equal(t, time.January, mc.Month)
	assert.Equal(t, 2026, mc.Year)
	assert.Equal(t, 5, mc.Nights)
	assert.True(t, mc.Rate.Equal(money(100)))
	assert.True(t, mc.Subtotal.Equal(money(500)))
	assert.Equal(t, 0, mc.DealNights)
}

func TestCalculate_MonthSpanningStay(t *testing.T) {
	calc := Calculate(date(2026, time.January, 28), date(2026, time.February, 5), flatRates(100), money(100), nil)

	assert.Equal(t, 8, calc.TotalNights)
	require.Len(t, calc.Months, 2)

	jan, feb := calc.Months[0], calc.Months[1]
	assert.Equal(t, time.January, jan.Month)
	assert.Equal(t, 4, jan.Nights)
	assert.Equal(t, time.February, feb.Month)
	assert.Equal(t, 4, feb.Nights)
	assert.True(t, calc.Total.Equal(money(800)), "total = %s", calc.Total)
}

func TestCalculate_DealFullyCoveringStay(t *testing.T) {
	deal := &DealWindow{
		ID:              "d1",
		Name:            "Spring Promo",
		DiscountPercent: money(30),
		Start:           date(2026, time.March, 1),
		End:             date(2026, time.March, 31),
	}
	calc := Calculate(date(2026, time.March, 10), date(2026, time.March, 15), flatRates(100), money(100), deal)

	assert.True(t, calc.DealApplied)
	assert.Equal(t, "Spring Promo", calc.DealName)
	assert.True(t, calc.DealDiscount.Equal(money(150)), "discount = %s", calc.DealDiscount)
	assert.True(t, calc.Total.Equal(money(350)), "total = %s", calc.Total)

	require.Len(t, calc.Months, 1)
	assert.Equal(t, 5, calc.Months[0].DealNights)
}

func TestCalculate_DealPartiallyOverlappingStay(t *testing.T) {
	deal := &DealWindow{
		ID:              "d2",
		Name:            "Flash Sale",
		DiscountPercent: money(20),
		Start:           date(2026, time.February, 12),
		End:             date(2026, time.February, 14),
	}
	calc := Calculate(date(2026, time.February, 10), date(2026, time.February, 15), flatRates(100), money(100), deal)

	assert.True(t, calc.DealApplied)
	assert.True(t, calc.DealDiscount.Equal(money(40)), "discount = %s", calc.DealDiscount)
	assert.True(t, calc.Total.Equal(money(460)), "total = %s", calc.Total)

	require.Len(t, calc.Months, 1)
	mc := calc.Months[0]
	assert.Equal(t, 5, mc.Nights)
	assert.Equal(t, 2, mc.DealNights)
	assert.True(t, mc.Subtotal.Equal(money(460)))
}

func TestCalculate_NonOverlappingDeal(t *testing.T) {
	deal := &DealWindow{
		ID:              "d3",
		Name:            "Late Deal",
		DiscountPercent: money(50),
		Start:           date(2026, time.April, 20),
		End:             date(2026, time.April, 30),
	}
	calc := Calculate(date(2026, time.April, 10), date(2026, time.April, 15), flatRates(100), money(100), deal)

	assert.False(t, calc.DealApplied)
	assert.True(t, calc.DealDiscount.IsZero())
	assert.True(t, calc.Total.Equal(money(500)), "total = %s", calc.Total)
}

func TestCalculate_SingleNightStay(t *testing.T) {
	calc := Calculate(date(2026, time.June, 15), date(2026, time.June, 16), flatRates(100), money(100), nil)

	assert.Equal(t, 1, calc.TotalNights)
	require.Len(t, calc.Months, 1)
	assert.Equal(t, 1, calc.Months[0].Nights)
	assert.True(t, calc.Total.Equal(money(100)), "total = %s", calc.Total)
}

func TestCalculate_DegenerateRangeBillsOneNight(t *testing.T) {
	checkIn := date(2026, time.July, 10)

	for _, checkOut := range []time.Time{checkIn, date(2026, time.July, 8)} {
		calc := Calculate(checkIn, checkOut, flatRates(100), money(100), nil)

		assert.Equal(t, 1, calc.TotalNights)
		require.Len(t, calc.Months, 1, "degenerate range must still produce one breakdown entry")
		assert.Equal(t, 1, calc.Months[0].Nights)
		assert.True(t, calc.Total.Equal(money(100)))
	}
}

func TestCalculate_ClockTimesCollapseToCalendarNights(t *testing.T) {
	// A 15:00 check-in and 11:00 check-out across a month boundary must
	// bill the same two nights as the midnight-aligned stay.
	calc := Calculate(
		time.Date(2026, time.January, 31, 15, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 2, 11, 0, 0, 0, time.UTC),
		flatRates(100), money(100), nil)

	assert.Equal(t, 2, calc.TotalNights)
	require.Len(t, calc.Months, 2)
	assert.Equal(t, 1, calc.Months[0].Nights)
	assert.Equal(t, 1, calc.Months[1].Nights)
	assert.True(t, calc.Total.Equal(money(200)), "total = %s", calc.Total)
}

func TestCalculate_ClockTimesOnDealWindowIgnored(t *testing.T) {
	deal := &DealWindow{
		ID:              "d7",
		Name:            "Evening Deal",
		DiscountPercent: money(10),
		Start:           time.Date(2026, time.March, 10, 18, 30, 0, 0, time.UTC),
		End:             time.Date(2026, time.March, 12, 6, 0, 0, 0, time.UTC),
	}
	withTimes := Calculate(date(2026, time.March, 9), date(2026, time.March, 13), flatRates(100), money(100), deal)

	aligned := *deal
	aligned.Start = date(2026, time.March, 10)
	aligned.End = date(2026, time.March, 12)
	withoutTimes := Calculate(date(2026, time.March, 9), date(2026, time.March, 13), flatRates(100), money(100), &aligned)

	assert.Equal(t, withoutTimes, withTimes)
}

func TestCalculate_ZeroMonthlyRateFallsBackToBaseRate(t *testing.T) {
	rates := flatRates(100)
	rates[time.May-1] = decimal.Zero

	calc := Calculate(date(2026, time.May, 1), date(2026, time.May, 4), rates, money(80), nil)

	require.Len(t, calc.Months, 1)
	assert.True(t, calc.Months[0].Rate.Equal(money(80)), "zero slot must fall back to base rate")
	assert.True(t, calc.Total.Equal(money(240)))
}

func TestCalculate_ShortRateTableFallsBackToBaseRate(t *testing.T) {
	calc := Calculate(date(2026, time.November, 1), date(2026, time.November, 3), nil, money(90), nil)

	require.Len(t, calc.Months, 1)
	assert.True(t, calc.Months[0].Rate.Equal(money(90)))
	assert.True(t, calc.Total.Equal(money(180)))
}

func TestCalculate_VaryingMonthlyRatesAcrossMonths(t *testing.T) {
	rates := flatRates(100)
	rates[time.December-1] = money(150)
	rates[time.January-1] = money(120)

	calc := Calculate(date(2025, time.December, 30), date(2026, time.January, 2), rates, money(100), nil)

	require.Len(t, calc.Months, 2)
	dec, jan := calc.Months[0], calc.Months[1]
	assert.Equal(t, 2025, dec.Year)
	assert.Equal(t, 2, dec.Nights)
	assert.True(t, dec.Subtotal.Equal(money(300)))
	assert.Equal(t, 2026, jan.Year)
	assert.Equal(t, 1, jan.Nights)
	assert.True(t, jan.Subtotal.Equal(money(120)))
	assert.True(t, calc.Total.Equal(money(420)), "total = %s", calc.Total)
}

func TestCalculate_ZeroPercentDealStillMarksApplied(t *testing.T) {
	deal := &DealWindow{
		ID:              "d4",
		Name:            "Placeholder",
		DiscountPercent: decimal.Zero,
		Start:           date(2026, time.August, 1),
		End:             date(2026, time.August, 31),
	}
	calc := Calculate(date(2026, time.August, 10), date(2026, time.August, 12), flatRates(100), money(100), deal)

	// DealApplied means "a deal window overlapped the stay", not "money saved".
	assert.True(t, calc.DealApplied)
	assert.True(t, calc.DealDiscount.IsZero())
	assert.True(t, calc.Total.Equal(money(200)))
}

func TestCalculate_DealSpanningMonthBoundary(t *testing.T) {
	deal := &DealWindow{
		ID:              "d5",
		Name:            "New Year",
		DiscountPercent: money(10),
		Start:           date(2025, time.December, 31),
		End:             date(2026, time.January, 2),
	}
	calc := Calculate(date(2025, time.December, 29), date(2026, time.January, 3), flatRates(100), money(100), deal)

	require.Len(t, calc.Months, 2)
	dec, jan := calc.Months[0], calc.Months[1]
	assert.Equal(t, 3, dec.Nights)
	assert.Equal(t, 1, dec.DealNights)
	assert.Equal(t, 2, jan.Nights)
	assert.Equal(t, 1, jan.DealNights)
	// 2 discounted nights at 10% off 100
	assert.True(t, calc.DealDiscount.Equal(money(20)), "discount = %s", calc.DealDiscount)
	assert.True(t, calc.Total.Equal(money(480)))
}

func TestCalculate_Invariants(t *testing.T) {
	deals := []*DealWindow{
		nil,
		{ID: "a", Name: "A", DiscountPercent: money(15), Start: date(2026, time.January, 1), End: date(2026, time.December, 31)},
		{ID: "b", Name: "B", DiscountPercent: money(40), Start: date(2026, time.March, 5), End: date(2026, time.March, 20)},
	}
	stays := [][2]time.Time{
		{date(2026, time.January, 15), date(2026, time.January, 20)},
		{date(2026, time.January, 28), date(2026, time.March, 5)},
		{date(2026, time.March, 1), date(2026, time.March, 2)},
		{date(2026, time.February, 25), date(2026, time.April, 10)},
		{
			time.Date(2026, time.January, 30, 18, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	for _, deal := range deals {
		for _, stay := range stays {
			calc := Calculate(stay[0], stay[1], flatRates(100), money(100), deal)

			nights := 0
			subtotal := decimal.Zero
			discount := decimal.Zero
			for _, mc := range calc.Months {
				nights += mc.Nights
				subtotal = subtotal.Add(mc.Subtotal)
				discount = discount.Add(mc.DealAmount)
				assert.LessOrEqual(t, mc.DealNights, mc.Nights)
			}

			assert.Equal(t, calc.TotalNights, nights)
			assert.True(t, calc.Subtotal.Equal(subtotal))
			assert.True(t, calc.DealDiscount.Equal(discount))
			assert.True(t, calc.Total.Equal(calc.Subtotal), "total must equal subtotal, tax is not applied here")
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	deal := &DealWindow{
		ID:              "d6",
		Name:            "Repeat",
		DiscountPercent: money(25),
		Start:           date(2026, time.May, 3),
		End:             date(2026, time.May, 9),
	}

	first := Calculate(date(2026, time.May, 1), date(2026, time.May, 12), flatRates(110), money(110), deal)
	second := Calculate(date(2026, time.May, 1), date(2026, time.May, 12), flatRates(110), money(110), deal)

	assert.Equal(t, first, second)
}
