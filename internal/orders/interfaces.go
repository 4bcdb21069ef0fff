package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

// Repository encapsulates order persistence. Every mutation of lifecycle
// fields is a condition-checked update so concurrent requests cannot both
// observe success for the same state change.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, string, error)

	// MarkPaid flips is_paid only when currently false; when the order is
	// still pending payment the status advances to processing in the same
	// statement. Returns false when the order was already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error)
	// MarkDelivered flips is_delivered only when currently false and the
	// order is not terminal.
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (bool, error)
	// SetStatus forces the status when the order is not terminal.
	SetStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (bool, error)
	// Cancel moves the order to cancelled unless it is terminal or was
	// settled through the gateway.
	Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error)

	CreateAudit(ctx context.Context, audit *models.OrderAudit) error
	ListAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error)
}
