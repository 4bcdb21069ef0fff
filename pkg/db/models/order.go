package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

// Order is the immutable-after-creation record of a committed purchase.
// Line items and the four price fields are frozen at placement time;
// only the payment/delivery lifecycle fields mutate afterwards.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ShippingAddress  types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Currency         enums.Currency      `gorm:"column:currency;type:text;not null;default:'GHS'"`
	ItemsPrice       decimal.Decimal     `gorm:"column:items_price;type:numeric(12,2);not null"`
	ShippingPrice    decimal.Decimal     `gorm:"column:shipping_price;type:numeric(12,2);not null"`
	TaxPrice         decimal.Decimal     `gorm:"column:tax_price;type:numeric(12,2);not null"`
	TotalPrice       decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	IsPaid           bool                `gorm:"column:is_paid;not null;default:false"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
	PaymentReference *string             `gorm:"column:payment_reference"`
	IsDelivered      bool                `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	Items            []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
