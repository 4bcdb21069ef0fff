package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

// Item is one product selection in a session cart. Name, price and image are
// snapshotted from the catalog at the time the line was added.
type Item struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"image_url"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	CountInStock int             `json:"count_in_stock"`
}

// Totals are always derived from the item list, never stored independently.
type Totals struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Cart is the session-scoped checkout state returned to callers.
type Cart struct {
	SessionID       string               `json:"session_id"`
	Items           []Item               `json:"items"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	PaymentMethod   *enums.PaymentMethod `json:"payment_method,omitempty"`
	Totals          Totals               `json:"totals"`
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
