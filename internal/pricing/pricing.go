// Package pricing computes invoice totals. Everything is integer arithmetic on
// minor units (cents) and basis points; rounding happens here once per derived
// figure and never again downstream.
package pricing

// DiscountKind selects how Discount.Value is interpreted.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// Discount is an invoice-level reduction. For DiscountPercent, Value is in
// basis points (1250 = 12.5%); for DiscountFixed it is cents.
type Discount struct {
	Kind  DiscountKind
	Value int64
}

// Line is the minimal shape the engine needs from a line item.
type Line struct {
	Quantity  int64
	UnitPrice int64 // cents
}

// Totals is the full derived breakdown for one invoice.
type Totals struct {
	Subtotal       int64
	DiscountAmount int64
	Tax            int64
	Total          int64
}

// Compute derives totals from line items, a discount and the tax rate (basis
// points) of the selected payment method.
//
// The discount is deliberately not clamped to the subtotal: an over-large
// discount produces a negative total, matching how completed invoices have
// always been recorded.
func Compute(lines []Line, discount Discount, taxRateBps int64) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Quantity * l.UnitPrice
	}

	var discountAmount int64

	switch discount.Kind {
	case DiscountPercent:
		discountAmount = roundDiv(subtotal*discount.Value, 10000)
	case DiscountFixed:
		discountAmount = discount.Value
	}

	afterDiscount := subtotal - discountAmount
	tax := roundDiv(afterDiscount*taxRateBps, 10000)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Tax:            tax,
		Total:          afterDiscount + tax,
	}
}

// roundDiv divides n by d rounding half away from zero.
func roundDiv(n, d int64) int64 {
	if d == 0 {
		return 0
	}

	half := d / 2
	if n < 0 {
		return (n - half) / d
	}

	return (n + half) / d
}
