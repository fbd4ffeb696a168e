package pricing

// Coupon reports whether a coupon discount is requested for a total.
type Coupon bool

const (
	CouponNone    Coupon = false
	CouponApplied Coupon = true
)

// couponToken is the only literal accepted by ParseCoupon. Matching is case-sensitive.
const couponToken = "YES"

// ParseCoupon maps the legacy string flag onto a Coupon.
func ParseCoupon(value string) Coupon {
	return Coupon(value == couponToken)
}

// Applies reports whether the coupon discount should be taken.
func (c Coupon) Applies() bool { return bool(c) }
