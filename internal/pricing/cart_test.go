package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func demoCart(t *testing.T) *Cart {
	t.Helper()
	cart := NewCart()
	for _, line := range []struct {
		name  string
		price float64
		qty   int
	}{
		{"Apple", 1.5, 10},
		{"Banana", 0.5, 5},
		{"Laptop", 1000.0, 1},
	} {
		it, err := NewItem(line.name, line.price, line.qty)
		require.NoError(t, err)
		if line.name == "Laptop" {
			it.SetCategory(CategoryElectronics)
		}
		cart.AddItem(it)
	}
	return cart
}

func TestEmptyCartSubtotal(t *testing.T) {
	require.Zero(t, NewCart().CalculateSubtotal())
}

func TestSubtotalIncludesEnvFees(t *testing.T) {
	cart := NewCart()
	apple, err := NewItem("Apple", 1.5, 10)
	require.NoError(t, err)
	tv, err := NewItem("TV", 300, 2, WithCategory(CategoryElectronics))
	require.NoError(t, err)
	cart.AddItem(apple)
	cart.AddItem(tv)
	cart.AddItem(apple)
	cart.AddItem(nil)

	require.Equal(t, 3, cart.Len())
	require.InDelta(t, 15+600+10+15, cart.CalculateSubtotal(), 1e-9)

	items := cart.Items()
	require.Equal(t, "Apple", items[0].Name())
	require.Equal(t, "TV", items[1].Name())
	require.Equal(t, "Apple", items[2].Name())
}

func TestRejectedItemIsNeverAdded(t *testing.T) {
	cart := NewCart()
	it, err := NewItem("bad", -5, 1)
	require.Error(t, err)
	cart.AddItem(it)
	require.Zero(t, cart.Len())
	require.Zero(t, cart.CalculateSubtotal())
}

func TestApplyDiscounts(t *testing.T) {
	cart := NewCart()

	require.InDelta(t, 95.0, cart.ApplyDiscounts(100, true), 1e-9)
	require.InDelta(t, 180.0, cart.ApplyDiscounts(200, true), 1e-9)
	require.InDelta(t, 100.0, cart.ApplyDiscounts(100, false), 1e-9, "threshold is strict")
	require.InDelta(t, 90.5, cart.ApplyDiscounts(100.5, false), 1e-9)
	require.InDelta(t, 0.0, cart.ApplyDiscounts(0, true), 1e-9)
}

func TestApplyDiscountsChecksThresholdAfterMemberDiscount(t *testing.T) {
	cart := NewCart()
	// 105 - 5.25 = 99.75, below the threshold once discounted.
	require.InDelta(t, 99.75, cart.ApplyDiscounts(105, true), 1e-9)
	require.InDelta(t, 95.0, cart.ApplyDiscounts(105, false), 1e-9)
}

func TestCalculateTotalDemoScenario(t *testing.T) {
	cart := demoCart(t)

	require.InDelta(t, 1017.5, cart.CalculateSubtotal(), 1e-9)

	summary := cart.Quote(true, ParseCoupon("YES"))
	require.InDelta(t, 1017.5, summary.Subtotal, 1e-9)
	require.InDelta(t, 50.875, summary.MemberDiscount, 1e-9)
	require.InDelta(t, 10.0, summary.BigSpenderDiscount, 1e-9)
	require.InDelta(t, 956.625, summary.Taxable, 1e-9)
	require.InDelta(t, 76.53, summary.Tax, 1e-9)
	require.InDelta(t, 878.18175, summary.Total, 1e-9)
	require.Equal(t, "USD", summary.Currency)

	require.InDelta(t, 878.18175, cart.CalculateTotal(true, CouponApplied), 1e-9)
}

func TestCalculateTotalWithoutCoupon(t *testing.T) {
	cart := demoCart(t)
	require.InDelta(t, 1033.155, cart.CalculateTotal(true, ParseCoupon("yes")), 1e-9)
	require.InDelta(t, 1033.155, cart.CalculateTotal(true, CouponNone), 1e-9)
}

func TestCalculateTotalIsIdempotent(t *testing.T) {
	cart := demoCart(t)
	first := cart.CalculateTotal(true, CouponApplied)
	second := cart.CalculateTotal(true, CouponApplied)
	require.Equal(t, first, second)
}

func TestCalculateTotalCanGoNegative(t *testing.T) {
	rules := DefaultRules()
	rules.BigSpenderThreshold = 0
	cart, err := NewCartWithRules(rules)
	require.NoError(t, err)

	it, err := NewItem("Gum", 0.01, 1)
	require.NoError(t, err)
	cart.AddItem(it)

	require.Less(t, cart.CalculateTotal(true, CouponApplied), 0.0)
}

func TestNewCartWithRulesValidates(t *testing.T) {
	rules := DefaultRules()
	rules.TaxRate = 1.5
	_, err := NewCartWithRules(rules)
	require.ErrorIs(t, err, ErrInvalidArgument)

	rules = DefaultRules()
	rules.BigSpenderDiscount = -1
	_, err = NewCartWithRules(rules)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseCouponIsCaseSensitive(t *testing.T) {
	require.True(t, ParseCoupon("YES").Applies())
	require.False(t, ParseCoupon("yes").Applies())
	require.False(t, ParseCoupon("Yes").Applies())
	require.False(t, ParseCoupon(" YES").Applies())
	require.False(t, ParseCoupon("").Applies())
}
