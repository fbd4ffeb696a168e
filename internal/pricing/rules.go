package pricing

import "fmt"

// Rules holds the fixed-rate business constants applied by a cart.
type Rules struct {
	TaxRate             float64
	MemberDiscountRate  float64
	BigSpenderThreshold float64
	BigSpenderDiscount  float64
	CouponDiscountRate  float64
	// Currency is a display label only.
	Currency string
}

// DefaultRules returns the standard checkout rates.
func DefaultRules() Rules {
	return Rules{
		TaxRate:             0.08,
		MemberDiscountRate:  0.05,
		BigSpenderThreshold: 100,
		BigSpenderDiscount:  10,
		CouponDiscountRate:  0.15,
		Currency:            "USD",
	}
}

// Validate checks that every rate is within [0, 1] and amounts are non-negative.
func (r Rules) Validate() error {
	rates := []struct {
		name  string
		value float64
	}{
		{"tax rate", r.TaxRate},
		{"member discount rate", r.MemberDiscountRate},
		{"coupon discount rate", r.CouponDiscountRate},
	}
	for _, rate := range rates {
		if rate.value < 0 || rate.value > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalidArgument, rate.name)
		}
	}
	if r.BigSpenderThreshold < 0 {
		return fmt.Errorf("%w: big spender threshold must be non-negative", ErrInvalidArgument)
	}
	if r.BigSpenderDiscount < 0 {
		return fmt.Errorf("%w: big spender discount must be non-negative", ErrInvalidArgument)
	}
	return nil
}
