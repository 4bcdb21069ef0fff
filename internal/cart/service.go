package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/internal/session"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error)
	SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error)
	SaveShippingAddress(ctx context.Context, sessionID string, address types.Address) (*Cart, error)
	SavePaymentMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (*Cart, error)
	ClearItems(ctx context.Context, sessionID string) error
	Reset(ctx context.Context, sessionID string) error
}

type service struct {
	store    session.Store
	products productLoader
	pricing  config.PricingConfig
	logg     *logger.Logger
}

// NewService builds a cart service backed by the session store and catalog.
func NewService(store session.Store, products productLoader, pricing config.PricingConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		store:    store,
		products: products,
		pricing:  pricing,
		logg:     logg,
	}, nil
}

// Get assembles the full cart from the session records. A missing or
// unreadable record degrades to its zero value; it never fails the read.
func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	return s.assemble(ctx, sessionID, s.loadItems(ctx, sessionID)), nil
}

// AddItem snapshots the product into the cart. Re-adding a product replaces
// its quantity and snapshot entirely rather than incrementing.
func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if quantity > product.CountInStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
			WithDetails(map[string]any{"count_in_stock": product.CountInStock})
	}

	next := Item{
		ProductID:    product.ID,
		Name:         product.Name,
		ImageURL:     product.ImageURL,
		UnitPrice:    product.Price,
		Quantity:     quantity,
		CountInStock: product.CountInStock,
	}

	items := s.loadItems(ctx, sessionID)
	replaced := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i] = next
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, next)
	}

	s.persistItems(ctx, sessionID, items)
	return s.assemble(ctx, sessionID, items), nil
}

// SetQuantity updates an existing line in place. Quantities below 1 are
// rejected; an absent line is not an error.
func (s *service) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	items := s.loadItems(ctx, sessionID)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			s.persistItems(ctx, sessionID, items)
			break
		}
	}
	return s.assemble(ctx, sessionID, items), nil
}

// RemoveItem drops the matching line; removing an absent product is a no-op.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	items := s.loadItems(ctx, sessionID)
	filtered := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) != len(items) {
		s.persistItems(ctx, sessionID, filtered)
	}
	return s.assemble(ctx, sessionID, filtered), nil
}

// SaveShippingAddress stores the checkout destination for the session.
func (s *service) SaveShippingAddress(ctx context.Context, sessionID string, address types.Address) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if !address.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	payload, err := json.Marshal(address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shipping address")
	}
	if err := s.store.Put(ctx, session.KindShippingAddress, sessionID, payload); err != nil {
		s.warnStorage(ctx, "persist shipping address", err)
	}

	cart := s.assemble(ctx, sessionID, s.loadItems(ctx, sessionID))
	cart.ShippingAddress = &address
	return cart, nil
}

// SavePaymentMethod stores the chosen settlement method for the session.
func (s *service) SavePaymentMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	payload, err := json.Marshal(method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment method")
	}
	if err := s.store.Put(ctx, session.KindPaymentMethod, sessionID, payload); err != nil {
		s.warnStorage(ctx, "persist payment method", err)
	}

	cart := s.assemble(ctx, sessionID, s.loadItems(ctx, sessionID))
	cart.PaymentMethod = &method
	return cart, nil
}

// ClearItems empties the item list but keeps shipping/payment selections.
func (s *service) ClearItems(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Delete(ctx, session.KindCartItems, sessionID); err != nil {
		s.warnStorage(ctx, "clear cart items", err)
	}
	return nil
}

// Reset purges every session record, including shipping and payment choices.
func (s *service) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Purge(ctx, sessionID); err != nil {
		s.warnStorage(ctx, "reset session cart", err)
	}
	return nil
}

// assemble builds the response cart from an authoritative in-memory item
// list, reading only the sibling records from storage.
func (s *service) assemble(ctx context.Context, sessionID string, items []Item) *Cart {
	return &Cart{
		SessionID:       sessionID,
		Items:           items,
		ShippingAddress: s.loadShippingAddress(ctx, sessionID),
		PaymentMethod:   s.loadPaymentMethod(ctx, sessionID),
		Totals:          ComputeTotals(items, s.pricing),
	}
}

func (s *service) loadItems(ctx context.Context, sessionID string) []Item {
	raw, ok, err := s.store.Get(ctx, session.KindCartItems, sessionID)
	if err != nil {
		s.warnStorage(ctx, "load cart items", err)
		return nil
	}
	if !ok {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.warnStorage(ctx, "decode cart items", err)
		return nil
	}
	return items
}

func (s *service) loadShippingAddress(ctx context.Context, sessionID string) *types.Address {
	raw, ok, err := s.store.Get(ctx, session.KindShippingAddress, sessionID)
	if err != nil {
		s.warnStorage(ctx, "load shipping address", err)
		return nil
	}
	if !ok {
		return nil
	}
	var address types.Address
	if err := json.Unmarshal(raw, &address); err != nil {
		s.warnStorage(ctx, "decode shipping address", err)
		return nil
	}
	return &address
}

func (s *service) loadPaymentMethod(ctx context.Context, sessionID string) *enums.PaymentMethod {
	raw, ok, err := s.store.Get(ctx, session.KindPaymentMethod, sessionID)
	if err != nil {
		s.warnStorage(ctx, "load payment method", err)
		return nil
	}
	if !ok {
		return nil
	}
	var method enums.PaymentMethod
	if err := json.Unmarshal(raw, &method); err != nil {
		s.warnStorage(ctx, "decode payment method", err)
		return nil
	}
	if !method.IsValid() {
		return nil
	}
	return &method
}

// persistItems is fire-and-forget: a failed write never rolls back the
// mutation the caller already observed.
func (s *service) persistItems(ctx context.Context, sessionID string, items []Item) {
	payload, err := json.Marshal(items)
	if err != nil {
		s.warnStorage(ctx, "encode cart items", err)
		return
	}
	if err := s.store.Put(ctx, session.KindCartItems, sessionID, payload); err != nil {
		s.warnStorage(ctx, "persist cart items", err)
	}
}

func (s *service) warnStorage(ctx context.Context, op string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "cart_op", op), fmt.Sprintf("session storage degraded: %v", err))
}
