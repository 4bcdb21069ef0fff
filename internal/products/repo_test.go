package products

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  brand TEXT,
  category TEXT,
  image_url TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  count_in_stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedProduct(t *testing.T, repo *Repository, name string, active bool, createdAt time.Time) *models.Product {
	t.Helper()
	product, err := repo.Create(context.Background(), &models.Product{
		Name:         name,
		Price:        decimal.NewFromInt(25),
		CountInStock: 5,
		IsActive:     active,
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)
	return product
}

func TestProductCreateAndFind(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	created := seedProduct(t, repo, "Kente Tote", true, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kente Tote", found.Name)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(25)))
}

func TestProductListFiltersByKeywordAndActive(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	now := time.Now().UTC()
	seedProduct(t, repo, "Kente Tote", true, now)
	seedProduct(t, repo, "Shea Butter", true, now.Add(time.Second))
	seedProduct(t, repo, "Kente Scarf", false, now.Add(2*time.Second))

	records, _, err := repo.List(context.Background(), ListQuery{Keyword: "kente", OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Kente Tote", records[0].Name)
}

func TestProductListPaginates(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seedProduct(t, repo, fmt.Sprintf("Item %d", i), true, now.Add(time.Duration(i)*time.Second))
	}

	first, next, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, first, 2)
	require.NotEmpty(t, next)

	rest, last, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 2, Cursor: next}})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, last)
}

func TestDeactivateIsConditional(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))
	product := seedProduct(t, repo, "Kente Tote", true, time.Now().UTC())
	ctx := context.Background()

	removed, err := repo.Deactivate(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	again, err := repo.Deactivate(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, again)

	missing, err := repo.Deactivate(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, missing)
}
