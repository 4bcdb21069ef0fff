package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderAudit records one attributable admin override or payment event
// against an order.
type OrderAudit struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"column:actor_id;type:uuid;not null"`
	Action    string    `gorm:"column:action;not null"`
	Detail    *string   `gorm:"column:detail"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
