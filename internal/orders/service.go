package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/internal/cart"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	ClearItems(ctx context.Context, sessionID string) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes order placement and lifecycle transitions.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrderPage, error)

	// Admin console operations. Every override is attributed to actorID and
	// leaves an audit row.
	GetAny(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) (OrderPage, error)
	MarkPaid(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	MarkDelivered(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, actorID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	ListAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error)

	// RecordPaymentVerified applies the reconciliation bridge's conditional
	// paid flip. Returns true when this call changed state; false means the
	// order was already paid.
	RecordPaymentVerified(ctx context.Context, orderID uuid.UUID, reference string) (bool, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	carts    cartStore
	products productLoader
	pricing  config.PricingConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the order aggregate's dependencies.
func NewService(repo Repository, tx txRunner, carts cartStore, products productLoader, pricing config.PricingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		products: products,
		pricing:  pricing,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// PlaceOrder snapshots the session cart into an immutable order. Prices and
// names are taken from the live catalog at this moment and frozen; later
// catalog edits never touch the placed order.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "cannot place an order from an empty cart")
	}
	if current.ShippingAddress == nil || !current.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	if current.PaymentMethod == nil || !current.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	lineItems := make([]models.OrderLineItem, 0, len(current.Items))
	snapshot := make([]cart.Item, 0, len(current.Items))
	for _, line := range current.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").
				WithDetails(map[string]any{"product_id": product.ID})
		}
		if line.Quantity > product.CountInStock {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
				WithDetails(map[string]any{"product_id": product.ID, "count_in_stock": product.CountInStock})
		}

		lineItems = append(lineItems, models.OrderLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			LineTotal: product.Price.Mul(decimalFromInt(line.Quantity)).Round(2),
		})
		snapshot = append(snapshot, cart.Item{
			ProductID: product.ID,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	totals := cart.ComputeTotals(snapshot, s.pricing)
	currency, err := enums.ParseCurrency(s.pricing.Currency)
	if err != nil {
		currency = enums.CurrencyGHS
	}

	order := &models.Order{
		UserID:          userID,
		ShippingAddress: *current.ShippingAddress,
		PaymentMethod:   *current.PaymentMethod,
		Currency:        currency,
		ItemsPrice:      totals.ItemsPrice,
		ShippingPrice:   totals.ShippingPrice,
		TaxPrice:        totals.TaxPrice,
		TotalPrice:      totals.TotalPrice,
		Status:          enums.OrderStatusPendingPayment,
		Items:           lineItems,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cart clearing is best-effort; the order is already committed.
	if err := s.carts.ClearItems(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), fmt.Sprintf("clearing cart after placement: %v", err))
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order placed")
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrderPage, error) {
	if userID == uuid.Nil {
		return OrderPage{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	records, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return OrderPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return OrderPage{Orders: records, NextCursor: next}, nil
}

func (s *service) GetAny(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (OrderPage, error) {
	records, next, err := s.repo.List(ctx, params)
	if err != nil {
		return OrderPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return OrderPage{Orders: records, NextCursor: next}, nil
}

// MarkPaid is the admin override for cash-on-delivery settlements. Gateway
// orders are only paid through verification.
func (s *service) MarkPaid(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, terminalError(order.Status)
	}
	if order.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "only cash-on-delivery orders can be marked paid manually")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "order is already paid")
	}

	now := s.now()
	updated, err := s.repo.MarkPaid(ctx, orderID, "", now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "order is already paid")
	}

	s.recordAudit(ctx, orderID, actorID, AuditActionMarkPaid, nil)
	return s.loadOrder(ctx, orderID)
}

// MarkDelivered requires the order to be settled first, either through a
// verified gateway payment or the cash-on-delivery method.
func (s *service) MarkDelivered(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, terminalError(order.Status)
	}
	if !order.IsPaid && order.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "order must be paid before delivery")
	}
	if order.IsDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "order is already delivered")
	}

	updated, err := s.repo.MarkDelivered(ctx, orderID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "delivery state did not change")
	}

	s.recordAudit(ctx, orderID, actorID, AuditActionMarkDelivered, nil)
	return s.loadOrder(ctx, orderID)
}

// SetStatus forces an arbitrary non-terminal transition.
func (s *service) SetStatus(ctx context.Context, actorID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, terminalError(order.Status)
	}

	// Cancellation keeps its guard even through the generic override: a paid
	// gateway order never flips to cancelled by a status edit.
	var updated bool
	if target == enums.OrderStatusCancelled {
		if order.IsPaid && order.PaymentMethod == enums.PaymentMethodGateway {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "paid gateway orders require a refund before cancellation")
		}
		updated, err = s.repo.Cancel(ctx, orderID, s.now())
	} else {
		updated, err = s.repo.SetStatus(ctx, orderID, target)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "order status did not change")
	}

	detail := fmt.Sprintf("%s -> %s", order.Status, target)
	s.recordAudit(ctx, orderID, actorID, AuditActionSetStatus, &detail)
	return s.loadOrder(ctx, orderID)
}

// Cancel rejects paid gateway orders: reversing a committed charge needs a
// refund workflow, not a bare status flip.
func (s *service) Cancel(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, terminalError(order.Status)
	}
	if order.IsPaid && order.PaymentMethod == enums.PaymentMethodGateway {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "paid gateway orders require a refund before cancellation")
	}

	updated, err := s.repo.Cancel(ctx, orderID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "order could not be cancelled")
	}

	s.recordAudit(ctx, orderID, actorID, AuditActionCancel, nil)
	return s.loadOrder(ctx, orderID)
}

func (s *service) ListAudits(ctx context.Context, orderID uuid.UUID) ([]models.OrderAudit, error) {
	audits, err := s.repo.ListAudits(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order audits")
	}
	return audits, nil
}

func (s *service) RecordPaymentVerified(ctx context.Context, orderID uuid.UUID, reference string) (bool, error) {
	updated, err := s.repo.MarkPaid(ctx, orderID, reference, s.now())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verified payment")
	}
	return updated, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) recordAudit(ctx context.Context, orderID, actorID uuid.UUID, action string, detail *string) {
	audit := &models.OrderAudit{
		OrderID: orderID,
		ActorID: actorID,
		Action:  action,
		Detail:  detail,
	}
	if err := s.repo.CreateAudit(ctx, audit); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), fmt.Sprintf("recording %s audit: %v", action, err))
	}
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

func terminalError(status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("order is %s and accepts no further transitions", status))
}
