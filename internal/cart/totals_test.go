package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/pkg/config"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		FreeShippingThreshold: 100,
		FlatShippingFee:       10,
		TaxRate:               0.15,
		Currency:              "GHS",
	}
}

func TestComputeTotalsChargesShippingAtExactThreshold(t *testing.T) {
	items := []Item{{
		ProductID: uuid.New(),
		UnitPrice: decimal.NewFromInt(50),
		Quantity:  2,
	}}

	totals := ComputeTotals(items, testPricing())

	if !totals.ItemsPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("items price = %s, want 100", totals.ItemsPrice)
	}
	// Subtotal of exactly 100 is not strictly above the threshold.
	if !totals.ShippingPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("shipping price = %s, want 10", totals.ShippingPrice)
	}
	if !totals.TaxPrice.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("tax price = %s, want 15", totals.TaxPrice)
	}
	if !totals.TotalPrice.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("total price = %s, want 125", totals.TotalPrice)
	}
}

func TestComputeTotalsWaivesShippingAboveThreshold(t *testing.T) {
	items := []Item{{
		ProductID: uuid.New(),
		UnitPrice: decimal.NewFromInt(50),
		Quantity:  3,
	}}

	totals := ComputeTotals(items, testPricing())

	if !totals.ItemsPrice.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("items price = %s, want 150", totals.ItemsPrice)
	}
	if !totals.ShippingPrice.IsZero() {
		t.Fatalf("shipping price = %s, want 0", totals.ShippingPrice)
	}
	if !totals.TaxPrice.Equal(decimal.RequireFromString("22.5")) {
		t.Fatalf("tax price = %s, want 22.5", totals.TaxPrice)
	}
	if !totals.TotalPrice.Equal(decimal.RequireFromString("172.5")) {
		t.Fatalf("total price = %s, want 172.5", totals.TotalPrice)
	}
}

func TestComputeTotalsRoundsTax(t *testing.T) {
	items := []Item{{
		ProductID: uuid.New(),
		UnitPrice: decimal.RequireFromString("19.99"),
		Quantity:  1,
	}}

	totals := ComputeTotals(items, testPricing())

	// 19.99 * 0.15 = 2.9985 rounds to 3.00
	if !totals.TaxPrice.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("tax price = %s, want 3", totals.TaxPrice)
	}
}

func TestComputeTotalsIsPureFunctionOfItems(t *testing.T) {
	items := []Item{
		{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(20), Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("7.25"), Quantity: 4},
	}

	first := ComputeTotals(items, testPricing())
	second := ComputeTotals(items, testPricing())

	if !first.TotalPrice.Equal(second.TotalPrice) {
		t.Fatalf("totals differ between derivations: %s vs %s", first.TotalPrice, second.TotalPrice)
	}
}
