package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem captures the snapshot of a single cart line at placement.
// Catalog changes after placement never alter these rows.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	ImageURL  string          `gorm:"column:image_url;not null;default:''"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
