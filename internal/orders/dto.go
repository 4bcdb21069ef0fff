package orders

import (
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
)

// Audit action labels recorded for every privileged or payment-driven
// lifecycle mutation.
const (
	AuditActionMarkPaid        = "mark_paid"
	AuditActionMarkDelivered   = "mark_delivered"
	AuditActionSetStatus       = "set_status"
	AuditActionCancel          = "cancel"
	AuditActionPaymentVerified = "payment_verified"
)

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
