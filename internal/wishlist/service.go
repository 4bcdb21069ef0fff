package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

type repository interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
}

// Service exposes the saved-products list.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
}

type service struct {
	repo repository
}

// NewService builds the wishlist service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	return &service{repo: repo}, nil
}

// Add saves the product; re-adding is a no-op.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if err := s.repo.AddItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist item")
	}
	return nil
}

// Remove drops the saved product; removing an absent item is a no-op.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	if userID == uuid.Nil {
		return Page{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	page, err := s.repo.ListItems(ctx, userID, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return page, nil
}
