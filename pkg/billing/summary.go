package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItemDescriptions renders one invoice line per month charge, splitting
// months with deal nights into a full-rate line and a discounted line. When
// any discount money was saved, a trailing total-discount line is appended.
func LineItemDescriptions(calc Charges) []string {
	var lines []string
	for _, mc := range calc.Months {
		lines = append(lines, monthLines(mc)...)
	}
	if calc.DealApplied && calc.DealDiscount.IsPositive() {
		lines = append(lines, fmt.Sprintf("Total %s discount: -$%s", calc.DealName, calc.DealDiscount.StringFixed(2)))
	}
	return lines
}

// RenderBillSummary renders a multi-paragraph textual report of the
// calculation: a total-nights header, one paragraph per month with its line
// items and subtotal, then the grand total (with pre-discount and discount
// lines when a deal saved money).
func RenderBillSummary(calc Charges) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total nights: %d\n", calc.TotalNights)
	for _, mc := range calc.Months {
		b.WriteString("\n")
		for _, line := range monthLines(mc) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Subtotal: $%s\n", mc.Subtotal.StringFixed(2))
	}

	b.WriteString("\n")
	if calc.DealApplied && calc.DealDiscount.IsPositive() {
		preDiscount := calc.Subtotal.Add(calc.DealDiscount)
		fmt.Fprintf(&b, "Subtotal before discount: $%s\n", preDiscount.StringFixed(2))
		fmt.Fprintf(&b, "Total %s discount: -$%s\n", calc.DealName, calc.DealDiscount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: $%s\n", calc.Total.StringFixed(2))

	return b.String()
}

func monthLines(mc MonthCharge) []string {
	label := fmt.Sprintf("%s %d", mc.Month, mc.Year)

	if mc.DealNights == 0 {
		return []string{fmt.Sprintf("%s: %d %s @ $%s/night = $%s",
			label, mc.Nights, nightWord(mc.Nights), mc.Rate.StringFixed(2), mc.Subtotal.StringFixed(2))}
	}

	var lines []string
	fullNights := mc.Nights - mc.DealNights
	fullAmount := decimal.Zero
	if fullNights > 0 {
		fullAmount = mc.Rate.Mul(decimal.NewFromInt(int64(fullNights))).Round(2)
		lines = append(lines, fmt.Sprintf("%s: %d %s @ $%s/night = $%s",
			label, fullNights, nightWord(fullNights), mc.Rate.StringFixed(2), fullAmount.StringFixed(2)))
	}

	discountedRate := mc.Rate.Sub(mc.Rate.Mul(mc.DealDiscountPercent).Div(hundred)).Round(2)
	dealAmount := mc.Subtotal.Sub(fullAmount)
	lines = append(lines, fmt.Sprintf("%s: %d %s @ $%s/night (%s, %s%% off) = $%s",
		label, mc.DealNights, nightWord(mc.DealNights), discountedRate.StringFixed(2),
		mc.DealName, mc.DealDiscountPercent.String(), dealAmount.StringFixed(2)))

	return lines
}

func nightWord(n int) string {
	if n == 1 {
		return "night"
	}
	return "nights"
}
