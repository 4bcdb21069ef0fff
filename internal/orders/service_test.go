package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/internal/cart"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

type fakeRepo struct {
	orders map[uuid.UUID]*models.Order
	audits []models.OrderAudit
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	copied := *order
	f.orders[order.ID] = &copied
	return order, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, _ pagination.Params) ([]models.Order, string, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, "", nil
}

func (f *fakeRepo) List(context.Context, pagination.Params) ([]models.Order, string, error) {
	var out []models.Order
	for _, order := range f.orders {
		out = append(out, *order)
	}
	return out, "", nil
}

func (f *fakeRepo) MarkPaid(_ context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error) {
	order, ok := f.orders[id]
	if !ok || order.IsPaid {
		return false, nil
	}
	order.IsPaid = true
	order.PaidAt = &paidAt
	if reference != "" {
		order.PaymentReference = &reference
	}
	if order.Status == enums.OrderStatusPendingPayment {
		order.Status = enums.OrderStatusProcessing
	}
	return true, nil
}

func (f *fakeRepo) MarkDelivered(_ context.Context, id uuid.UUID, deliveredAt time.Time) (bool, error) {
	order, ok := f.orders[id]
	if !ok || order.IsDelivered || order.Status.IsTerminal() {
		return false, nil
	}
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	order.Status = enums.OrderStatusDelivered
	return true, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, target enums.OrderStatus) (bool, error) {
	order, ok := f.orders[id]
	if !ok || order.Status.IsTerminal() {
		return false, nil
	}
	order.Status = target
	return true, nil
}

func (f *fakeRepo) Cancel(_ context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	order, ok := f.orders[id]
	if !ok || order.Status.IsTerminal() {
		return false, nil
	}
	if order.IsPaid && order.PaymentMethod == enums.PaymentMethodGateway {
		return false, nil
	}
	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &cancelledAt
	return true, nil
}

func (f *fakeRepo) CreateAudit(_ context.Context, audit *models.OrderAudit) error {
	audit.CreatedAt = time.Now().UTC()
	f.audits = append(f.audits, *audit)
	return nil
}

func (f *fakeRepo) ListAudits(_ context.Context, orderID uuid.UUID) ([]models.OrderAudit, error) {
	var out []models.OrderAudit
	for _, audit := range f.audits {
		if audit.OrderID == orderID {
			out = append(out, audit)
		}
	}
	return out, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeCarts struct {
	cart    *cart.Cart
	cleared bool
}

func (f *fakeCarts) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
	if f.cart == nil {
		return &cart.Cart{SessionID: sessionID}, nil
	}
	return f.cart, nil
}

func (f *fakeCarts) ClearItems(context.Context, string) error {
	f.cleared = true
	return nil
}

type fakeProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f.byID[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		FreeShippingThreshold: 100,
		FlatShippingFee:       10,
		TaxRate:               0.15,
		Currency:              "GHS",
	}
}

func fullCart(method enums.PaymentMethod, items ...cart.Item) *cart.Cart {
	return &cart.Cart{
		SessionID: "sid",
		Items:     items,
		ShippingAddress: &types.Address{
			Line1:      "12 Oxford St",
			City:       "Accra",
			PostalCode: "GA-183",
			Country:    "GH",
		},
		PaymentMethod: &method,
	}
}

func serviceUnderTest(t *testing.T, repo Repository, carts cartStore, products *fakeProducts) Service {
	t.Helper()
	if products == nil {
		products = &fakeProducts{byID: map[uuid.UUID]*models.Product{}}
	}
	svc, err := NewService(repo, fakeTx{}, carts, products, testPricing(), nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestPlaceOrderSnapshotsAndFreezesTotals(t *testing.T) {
	product := &models.Product{
		ID:           uuid.New(),
		Name:         "Kente Tote",
		ImageURL:     "/images/kente-tote.jpg",
		Price:        decimal.NewFromInt(50),
		CountInStock: 10,
		IsActive:     true,
	}
	products := &fakeProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	carts := &fakeCarts{cart: fullCart(enums.PaymentMethodGateway, cart.Item{ProductID: product.ID, Quantity: 2})}
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, carts, products)
	ctx := context.Background()
	userID := uuid.New()

	order, err := svc.PlaceOrder(ctx, userID, "sid")
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	if order.Status != enums.OrderStatusPendingPayment || order.IsPaid {
		t.Fatalf("new order must start pending and unpaid, got %s paid=%v", order.Status, order.IsPaid)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("total = %s, want 125", order.TotalPrice)
	}
	if len(order.Items) != 1 || !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatal("line item snapshot missing or wrong price")
	}
	if !carts.cleared {
		t.Fatal("cart items must be cleared after placement")
	}

	// Catalog changes after placement must never alter the stored order.
	product.Price = decimal.NewFromInt(500)
	stored, err := svc.GetOrder(ctx, userID, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatal("order line price changed after catalog edit")
	}
	if !stored.TotalPrice.Equal(decimal.NewFromInt(125)) {
		t.Fatal("order total changed after catalog edit")
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc := serviceUnderTest(t, newFakeRepo(), &fakeCarts{}, nil)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), "sid")
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidOrderState) {
		t.Fatalf("expected InvalidOrderState, got %v", err)
	}
}

func TestPlaceOrderRejectsIncompleteAddress(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Price: decimal.NewFromInt(10), CountInStock: 5, IsActive: true}
	carts := &fakeCarts{cart: &cart.Cart{
		SessionID:       "sid",
		Items:           []cart.Item{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: &types.Address{Line1: "12 Oxford St"},
	}}
	svc := serviceUnderTest(t, newFakeRepo(), carts, &fakeProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}})

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), "sid")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCashOnDeliveryLifecycle(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Shea Butter", Price: decimal.NewFromInt(20), CountInStock: 5, IsActive: true}
	products := &fakeProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	carts := &fakeCarts{cart: fullCart(enums.PaymentMethodCashOnDelivery, cart.Item{ProductID: product.ID, Quantity: 1})}
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, carts, products)
	ctx := context.Background()
	admin := uuid.New()

	order, err := svc.PlaceOrder(ctx, uuid.New(), "sid")
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if order.Status != enums.OrderStatusPendingPayment || order.IsPaid {
		t.Fatal("cash-on-delivery orders still start pending and unpaid")
	}

	paid, err := svc.MarkPaid(ctx, admin, order.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !paid.IsPaid || paid.PaidAt == nil {
		t.Fatal("expected paid flag and timestamp")
	}

	delivered, err := svc.MarkDelivered(ctx, admin, order.ID)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if delivered.Status != enums.OrderStatusDelivered || !delivered.IsDelivered {
		t.Fatalf("expected delivered terminal state, got %s", delivered.Status)
	}

	audits, err := svc.ListAudits(ctx, order.ID)
	if err != nil {
		t.Fatalf("list audits failed: %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audits))
	}
}

func TestMarkPaidRejectsGatewayOrders(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	order, _ := repo.Create(context.Background(), &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusPendingPayment,
	})

	_, err := svc.MarkPaid(context.Background(), uuid.New(), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidOrderState) {
		t.Fatalf("expected InvalidOrderState, got %v", err)
	}
}

func TestMarkDeliveredRequiresPayment(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	order, _ := repo.Create(context.Background(), &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusPendingPayment,
	})

	_, err := svc.MarkDelivered(context.Background(), uuid.New(), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidOrderState) {
		t.Fatalf("expected InvalidOrderState, got %v", err)
	}
}

func TestTerminalOrdersRejectEveryTransition(t *testing.T) {
	for _, terminal := range []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		repo := newFakeRepo()
		svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
		order, _ := repo.Create(context.Background(), &models.Order{
			UserID:        uuid.New(),
			PaymentMethod: enums.PaymentMethodCashOnDelivery,
			Status:        terminal,
		})
		ctx := context.Background()
		admin := uuid.New()

		if _, err := svc.MarkPaid(ctx, admin, order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("mark paid on %s: expected InvalidTransition, got %v", terminal, err)
		}
		if _, err := svc.MarkDelivered(ctx, admin, order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("mark delivered on %s: expected InvalidTransition, got %v", terminal, err)
		}
		if _, err := svc.SetStatus(ctx, admin, order.ID, enums.OrderStatusProcessing); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("set status on %s: expected InvalidTransition, got %v", terminal, err)
		}
		if _, err := svc.Cancel(ctx, admin, order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("cancel on %s: expected InvalidTransition, got %v", terminal, err)
		}

		stored, _ := repo.FindByID(ctx, order.ID)
		if stored.Status != terminal {
			t.Fatalf("terminal order mutated to %s", stored.Status)
		}
	}
}

func TestCancelPaidGatewayOrderIsRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	ctx := context.Background()
	order, _ := repo.Create(ctx, &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusProcessing,
		IsPaid:        true,
	})

	_, err := svc.Cancel(ctx, uuid.New(), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
}

func TestSetStatusCannotCancelPaidGatewayOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	ctx := context.Background()
	order, _ := repo.Create(ctx, &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusProcessing,
		IsPaid:        true,
	})

	_, err := svc.SetStatus(ctx, uuid.New(), order.ID, enums.OrderStatusCancelled)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, order.ID)
	if stored.Status != enums.OrderStatusProcessing || !stored.IsPaid {
		t.Fatalf("order mutated: status=%s paid=%v", stored.Status, stored.IsPaid)
	}
}

func TestSetStatusCancelOfUnpaidOrderRecordsCancellation(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	ctx := context.Background()
	order, _ := repo.Create(ctx, &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusPendingPayment,
	})

	updated, err := svc.SetStatus(ctx, uuid.New(), order.ID, enums.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", updated.Status)
	}
	if updated.CancelledAt == nil {
		t.Fatal("cancelled_at must be stamped when the override cancels")
	}
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	ctx := context.Background()
	order, _ := repo.Create(ctx, &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusPendingPayment,
	})

	_, err := svc.GetOrder(ctx, uuid.New(), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NotFound for foreign order, got %v", err)
	}
}

func TestRecordPaymentVerifiedIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := serviceUnderTest(t, repo, &fakeCarts{}, nil)
	ctx := context.Background()
	order, _ := repo.Create(ctx, &models.Order{
		UserID:        uuid.New(),
		PaymentMethod: enums.PaymentMethodGateway,
		Status:        enums.OrderStatusPendingPayment,
	})

	first, err := svc.RecordPaymentVerified(ctx, order.ID, "ref-001")
	if err != nil || !first {
		t.Fatalf("first verify should flip state, got updated=%v err=%v", first, err)
	}

	stored, _ := repo.FindByID(ctx, order.ID)
	firstPaidAt := *stored.PaidAt

	second, err := svc.RecordPaymentVerified(ctx, order.ID, "ref-001")
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if second {
		t.Fatal("second verify must be a no-op")
	}

	stored, _ = repo.FindByID(ctx, order.ID)
	if !stored.PaidAt.Equal(firstPaidAt) {
		t.Fatal("paidAt changed on duplicate verification")
	}
}
