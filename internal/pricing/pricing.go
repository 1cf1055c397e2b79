package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// Orders at or below the free-shipping threshold pay the flat fee.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingFee       = decimal.NewFromInt(100)
	taxRate               = decimal.NewFromFloat(0.15)
)

// Quote holds the computed price breakdown for a set of line items.
// All arithmetic is performed on decimals; values are formatted to two
// decimal places only at the JSON boundary.
type Quote struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Compute calculates the price breakdown for the given cart items:
// items total rounded to 2dp, free shipping strictly above the threshold,
// 15% tax on the items total, and the grand total.
func Compute(items []model.CartItem) Quote {
	itemsPrice := decimal.Zero
	for _, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsPrice = itemsPrice.Add(line)
	}
	itemsPrice = itemsPrice.Round(2)

	shippingPrice := flatShippingFee
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	taxPrice := itemsPrice.Mul(taxRate).Round(2)

	return Quote{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    itemsPrice.Add(shippingPrice).Add(taxPrice),
	}
}

// Matches reports whether another quote's total agrees with this one
// within the given tolerance.
func (q Quote) Matches(total decimal.Decimal, tolerance decimal.Decimal) bool {
	return q.TotalPrice.Sub(total).Abs().LessThanOrEqual(tolerance)
}
