package pricing_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
)

func TestCompute_Subtotal(t *testing.T) {
	lines := []pricing.Line{
		{Quantity: 2, UnitPrice: 1500},
		{Quantity: 1, UnitPrice: 9999},
		{Quantity: 3, UnitPrice: 250},
	}

	got := pricing.Compute(lines, pricing.Discount{}, 0)

	assert.Equal(t, int64(2*1500+9999+3*250), got.Subtotal)
	assert.Equal(t, got.Subtotal, got.Total)
}

func TestCompute_SubtotalOrderIndependent(t *testing.T) {
	lines := []pricing.Line{
		{Quantity: 1, UnitPrice: 100},
		{Quantity: 7, UnitPrice: 333},
		{Quantity: 2, UnitPrice: 4550},
		{Quantity: 4, UnitPrice: 19},
	}

	want := pricing.Compute(lines, pricing.Discount{}, 0).Subtotal

	r := rand.New(rand.NewSource(42))
	for range 10 {
		r.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
		assert.Equal(t, want, pricing.Compute(lines, pricing.Discount{}, 0).Subtotal)
	}
}

func TestCompute_PercentDiscountAndTax(t *testing.T) {
	lines := []pricing.Line{{Quantity: 1, UnitPrice: 20000}} // 200.00

	// 10% discount, 7.5% tax.
	got := pricing.Compute(lines, pricing.Discount{Kind: pricing.DiscountPercent, Value: 1000}, 750)

	assert.Equal(t, int64(20000), got.Subtotal)
	assert.Equal(t, int64(2000), got.DiscountAmount)
	assert.Equal(t, int64(1350), got.Tax) // 18000 * 7.5%
	assert.Equal(t, int64(19350), got.Total)
}

func TestCompute_PercentDiscountRounds(t *testing.T) {
	lines := []pricing.Line{{Quantity: 1, UnitPrice: 999}}

	// 3.33% of 9.99 = 0.3327 -> rounds to 0.33.
	got := pricing.Compute(lines, pricing.Discount{Kind: pricing.DiscountPercent, Value: 333}, 0)

	assert.Equal(t, int64(33), got.DiscountAmount)
	assert.Equal(t, int64(966), got.Total)
}

func TestCompute_FixedDiscount(t *testing.T) {
	lines := []pricing.Line{{Quantity: 2, UnitPrice: 5000}}

	got := pricing.Compute(lines, pricing.Discount{Kind: pricing.DiscountFixed, Value: 2500}, 0)

	assert.Equal(t, int64(2500), got.DiscountAmount)
	assert.Equal(t, int64(7500), got.Total)
}

func TestCompute_OversizedDiscountGoesNegative(t *testing.T) {
	lines := []pricing.Line{{Quantity: 1, UnitPrice: 1000}}

	got := pricing.Compute(lines, pricing.Discount{Kind: pricing.DiscountFixed, Value: 5000}, 0)

	// Not clamped: the caller surfaces the negative total instead of hiding it.
	assert.Equal(t, int64(-4000), got.Total)
}

func TestCompute_TaxAppliesAfterDiscount(t *testing.T) {
	lines := []pricing.Line{{Quantity: 1, UnitPrice: 10000}}

	withDiscount := pricing.Compute(lines, pricing.Discount{Kind: pricing.DiscountPercent, Value: 5000}, 1000)
	withoutDiscount := pricing.Compute(lines, pricing.Discount{}, 1000)

	assert.Equal(t, int64(500), withDiscount.Tax)
	assert.Equal(t, int64(1000), withoutDiscount.Tax)
}

func TestCompute_Empty(t *testing.T) {
	got := pricing.Compute(nil, pricing.Discount{Kind: pricing.DiscountPercent, Value: 1000}, 750)

	assert.Equal(t, pricing.Totals{}, got)
}
