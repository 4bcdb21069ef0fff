package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

// Entry pairs a saved product with the time it was saved.
type Entry struct {
	Product models.Product `json:"product"`
	SavedAt time.Time      `json:"saved_at"`
}

// Page is one cursor page of wishlist entries.
type Page struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(
			`INSERT INTO wishlist_items (id, user_id, product_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`,
			uuid.New(), userID, productID, time.Now().UTC(),
		).Error
}

// RemoveItem deletes the saved product if present.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

// ListItems returns a cursor page of the user's saved products.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, err
	}

	selectColumns := []string{
		"wi.id AS wishlist_id",
		"wi.created_at AS saved_at",
		"p.id AS product_id",
		"p.name",
		"p.description",
		"p.brand",
		"p.category",
		"p.image_url",
		"p.price",
		"p.count_in_stock",
		"p.is_active",
	}

	query := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("wi.user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where(
			"(wi.created_at < ?) OR (wi.created_at = ? AND wi.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var records []wishlistProductRecord
	err = query.
		Order("wi.created_at DESC").
		Order("wi.id DESC").
		Limit(limitWithBuffer).
		Scan(&records).Error
	if err != nil {
		return Page{}, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.SavedAt,
			ID:        last.WishlistID,
		})
	}

	entries := make([]Entry, 0, len(records))
	for _, row := range records {
		entries = append(entries, row.toEntry())
	}
	return Page{Entries: entries, NextCursor: nextCursor}, nil
}

type wishlistProductRecord struct {
	WishlistID   uuid.UUID       `gorm:"column:wishlist_id"`
	SavedAt      time.Time       `gorm:"column:saved_at"`
	ProductID    uuid.UUID       `gorm:"column:product_id"`
	Name         string          `gorm:"column:name"`
	Description  *string         `gorm:"column:description"`
	Brand        *string         `gorm:"column:brand"`
	Category     *string         `gorm:"column:category"`
	ImageURL     string          `gorm:"column:image_url"`
	Price        decimal.Decimal `gorm:"column:price"`
	CountInStock int             `gorm:"column:count_in_stock"`
	IsActive     bool            `gorm:"column:is_active"`
}

func (r wishlistProductRecord) toEntry() Entry {
	return Entry{
		Product: models.Product{
			ID:           r.ProductID,
			Name:         r.Name,
			Description:  r.Description,
			Brand:        r.Brand,
			Category:     r.Category,
			ImageURL:     r.ImageURL,
			Price:        r.Price,
			CountInStock: r.CountInStock,
			IsActive:     r.IsActive,
		},
		SavedAt: r.SavedAt,
	}
}
