package cart

import (
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/pkg/config"
)

// ComputeTotals derives the four price figures from the item list alone.
// The shipping waiver applies only when the subtotal is strictly above the
// threshold; a subtotal of exactly the threshold still pays the flat fee.
func ComputeTotals(items []Item, pricing config.PricingConfig) Totals {
	itemsPrice := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsPrice = itemsPrice.Add(line)
	}
	itemsPrice = itemsPrice.Round(2)

	threshold := decimal.NewFromFloat(pricing.FreeShippingThreshold)
	shippingPrice := decimal.NewFromFloat(pricing.FlatShippingFee).Round(2)
	if itemsPrice.GreaterThan(threshold) {
		shippingPrice = decimal.Zero.Round(2)
	}

	taxPrice := itemsPrice.Mul(decimal.NewFromFloat(pricing.TaxRate)).Round(2)
	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice)

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}
