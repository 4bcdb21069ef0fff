package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. The cart only ever snapshots it;
// later edits never touch placed orders.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Brand        *string         `gorm:"column:brand"`
	Category     *string         `gorm:"column:category"`
	ImageURL     string          `gorm:"column:image_url;not null;default:''"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CountInStock int             `gorm:"column:count_in_stock;not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
