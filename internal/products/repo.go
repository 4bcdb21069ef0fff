package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

// ListQuery filters the catalog listing.
type ListQuery struct {
	Keyword    string
	OnlyActive bool
	Pagination pagination.Params
}

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Deactivate removes the product from sale without touching placed orders.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, string, error) {
	normalizedLimit := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	decodedCursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	q := r.db.WithContext(ctx).Model(&models.Product{})
	if query.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	if keyword := strings.TrimSpace(query.Keyword); keyword != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(brand, '')) LIKE ?", pattern, pattern)
	}
	if decodedCursor != nil {
		q = q.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var records []models.Product
	err = q.
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
