package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
)

// ProductPage is one cursor page of catalog listings.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// UpsertInput carries the admin-editable product fields.
type UpsertInput struct {
	Name         string
	Description  *string
	Brand        *string
	Category     *string
	ImageURL     string
	Price        decimal.Decimal
	CountInStock int
	IsActive     bool
}

type repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, string, error)
}

// Service exposes the catalog operations the storefront and admin surfaces need.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, query ListQuery) (ProductPage, error)
	Create(ctx context.Context, input UpsertInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

// NewService builds the catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (ProductPage, error) {
	records, next, err := s.repo.List(ctx, query)
	if err != nil {
		return ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return ProductPage{Products: records, NextCursor: next}, nil
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Brand:        input.Brand,
		Category:     input.Category,
		ImageURL:     input.ImageURL,
		Price:        input.Price.Round(2),
		CountInStock: input.CountInStock,
		IsActive:     input.IsActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Brand = input.Brand
	product.Category = input.Category
	product.ImageURL = input.ImageURL
	product.Price = input.Price.Round(2)
	product.CountInStock = input.CountInStock
	product.IsActive = input.IsActive

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	removed, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "active product not found")
	}
	return nil
}

func validateUpsert(input UpsertInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if input.CountInStock < 0 {
		details["count_in_stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
