package pricing

// Summary aggregates each component of a priced cart.
type Summary struct {
	Subtotal           float64 `json:"subtotal"`
	MemberDiscount     float64 `json:"memberDiscount"`
	BigSpenderDiscount float64 `json:"bigSpenderDiscount"`
	Taxable            float64 `json:"taxable"`
	Tax                float64 `json:"tax"`
	CouponDiscount     float64 `json:"couponDiscount"`
	Total              float64 `json:"total"`
	Currency           string  `json:"currency"`
}

// Cart is an ordered collection of items priced under a fixed rule set.
// A cart is not safe for concurrent use; callers serialise AddItem against
// pricing calls.
type Cart struct {
	items []*Item
	rules Rules
}

// NewCart returns an empty cart using DefaultRules.
func NewCart() *Cart {
	return &Cart{rules: DefaultRules()}
}

// NewCartWithRules returns an empty cart bound to the provided rules.
func NewCartWithRules(rules Rules) (*Cart, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Cart{rules: rules}, nil
}

// Rules returns the cart's rule set.
func (c *Cart) Rules() Rules { return c.rules }

// AddItem appends an item. Nil items are ignored.
func (c *Cart) AddItem(it *Item) {
	if it == nil {
		return
	}
	c.items = append(c.items, it)
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of lines in the cart.
func (c *Cart) Len() int { return len(c.items) }

// CalculateSubtotal sums line totals and environmental fees in insertion order.
func (c *Cart) CalculateSubtotal() float64 {
	var subtotal float64
	for _, it := range c.items {
		subtotal += it.Total()
		subtotal += it.EnvFee()
	}
	return subtotal
}

// ApplyDiscounts takes the member discount and then, if the remaining amount
// is strictly above the threshold, the flat big-spender discount. The result
// is not clamped at zero.
func (c *Cart) ApplyDiscounts(subtotal float64, isMember bool) float64 {
	discounted, _, _ := c.applyDiscounts(subtotal, isMember)
	return discounted
}

func (c *Cart) applyDiscounts(subtotal float64, isMember bool) (float64, float64, float64) {
	var member, flat float64
	if isMember {
		member = subtotal * c.rules.MemberDiscountRate
		subtotal -= member
	}
	if subtotal > c.rules.BigSpenderThreshold {
		flat = c.rules.BigSpenderDiscount
		subtotal -= flat
	}
	return subtotal, member, flat
}

// CalculateTotal prices the cart: subtotal, discounts, tax, then coupon.
func (c *Cart) CalculateTotal(isMember bool, coupon Coupon) float64 {
	return c.Quote(isMember, coupon).Total
}

// Quote runs the same pipeline as CalculateTotal and keeps every component.
func (c *Cart) Quote(isMember bool, coupon Coupon) Summary {
	subtotal := c.CalculateSubtotal()
	taxable, member, flat := c.applyDiscounts(subtotal, isMember)
	tax := taxable * c.rules.TaxRate
	total := taxable + tax

	var couponDiscount float64
	if coupon.Applies() {
		couponDiscount = total * c.rules.CouponDiscountRate
		total -= couponDiscount
	}

	return Summary{
		Subtotal:           subtotal,
		MemberDiscount:     member,
		BigSpenderDiscount: flat,
		Taxable:            taxable,
		Tax:                tax,
		CouponDiscount:     couponDiscount,
		Total:              total,
		Currency:           c.rules.Currency,
	}
}
