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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID)
	return r.listPage(ctx, query, params)
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).Preload("Items")
	return r.listPage(ctx, query, params)
}

func (r *repository) listPage(_ context.Context, query *gorm.DB, params pagination.Params) ([]models.Order, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var records []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&records).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return records, nextCursor, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid":           true,
			"paid_at":           paidAt,
			"payment_reference": reference,
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				enums.OrderStatusPendingPayment.String(),
				enums.OrderStatusProcessing.String(),
			),
			"updated_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(
			"id = ? AND is_delivered = ? AND status NOT IN ?",
			id, false, terminalStatusStrings(),
		).
		Updates(map[string]any{
			"is_delivered": true,
			"delivered_at": deliveredAt,
			"status":       enums.OrderStatusDelivered.String(),
			"updated_at":   deliveredAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatusStrings()).
		Updates(map[string]any{
			"status":     target.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(
			"id = ? AND status NOT IN ? AND NOT (is_paid = ? AND payment_method = ?)",
			id, terminalStatusStrings(), true, enums.PaymentMethodGateway.String(),
		).
		Updates(map[string]any{
			"status":       enums.OrderStatusCancelled.String(),
			"cancelled_at": cancelledAt,
			"updated_at":   cancelledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateAudit(ctx context.Context, audit *models.OrderAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) ListAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error) {
	var audits []models.OrderAudit
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}

func terminalStatusStrings() []string {
	return []string{
		enums.OrderStatusDelivered.String(),
		enums.OrderStatusCancelled.String(),
	}
}
