package pricing

const (
	// CategoryGeneral is assigned to every item at construction.
	CategoryGeneral = "general"
	// CategoryElectronics carries a per-unit environmental fee.
	CategoryElectronics = "electronics"

	electronicsEnvFee = 5.0
)

// Item is a purchasable cart line.
type Item struct {
	name     string
	price    float64
	qty      int
	category string
	envFee   float64
}

// ItemOption customises an item before its environmental fee is derived.
type ItemOption func(*Item)

// WithCategory sets the category ahead of fee derivation.
func WithCategory(category string) ItemOption {
	return func(it *Item) {
		it.category = category
	}
}

// NewItem validates and constructs an item. The environmental fee is derived
// once from the category seen here; later SetCategory calls leave it as is.
func NewItem(name string, price float64, qty int, opts ...ItemOption) (*Item, error) {
	if price < 0 || qty < 0 {
		return nil, &ArgumentError{Msg: "price and quantity must be non-negative"}
	}
	it := &Item{
		name:     name,
		price:    price,
		qty:      qty,
		category: CategoryGeneral,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(it)
		}
	}
	it.envFee = envFeeFor(it.category)
	return it, nil
}

func envFeeFor(category string) float64 {
	if category == CategoryElectronics {
		return electronicsEnvFee
	}
	return 0
}

// Name returns the item label.
func (it *Item) Name() string { return it.name }

// Price returns the unit price.
func (it *Item) Price() float64 { return it.price }

// Qty returns the purchased quantity.
func (it *Item) Qty() int { return it.qty }

// Category returns the current category label.
func (it *Item) Category() string { return it.category }

// SetCategory reassigns the category. The environmental fee is not recomputed.
func (it *Item) SetCategory(category string) { it.category = category }

// EnvFeePerUnit returns the fee fixed at construction.
func (it *Item) EnvFeePerUnit() float64 { return it.envFee }

// Total returns price multiplied by quantity.
func (it *Item) Total() float64 {
	return it.price * float64(it.qty)
}

// EnvFee returns the environmental fee for the whole line.
func (it *Item) EnvFee() float64 {
	return it.envFee * float64(it.qty)
}
