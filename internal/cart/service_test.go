package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/internal/session"
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.byID[id]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *session.MemoryStore) {
	t.Helper()
	byID := map[uuid.UUID]*models.Product{}
	for _, product := range products {
		byID[product.ID] = product
	}
	store := session.NewMemoryStore()
	svc, err := NewService(store, &stubProducts{byID: byID}, testPricing(), nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, store
}

func activeProduct(price string, stock int) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Kente Tote",
		ImageURL:     "/images/kente-tote.jpg",
		Price:        decimal.RequireFromString(price),
		CountInStock: stock,
		IsActive:     true,
	}
}

func TestAddItemReplacesQuantityForSameProduct(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	sid := session.NewSessionID()

	if _, err := svc.AddItem(ctx, sid, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, sid, product.ID, 5)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected exactly one line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5 (replace, not increment)", cart.Items[0].Quantity)
	}
}

func TestAddItemRejectsQuantityAboveStock(t *testing.T) {
	product := activeProduct("50", 3)
	svc, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), session.NewSessionID(), product.ID, 4)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	product := activeProduct("50", 10)
	product.IsActive = false
	svc, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), session.NewSessionID(), product.ID, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemDerivesTotals(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)

	cart, err := svc.AddItem(context.Background(), session.NewSessionID(), product.ID, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if !cart.Totals.ItemsPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("items price = %s, want 100", cart.Totals.ItemsPrice)
	}
	if !cart.Totals.TotalPrice.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("total price = %s, want 125", cart.Totals.TotalPrice)
	}
}

func TestSetQuantityUpdatesLineAndTotals(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	sid := session.NewSessionID()

	if _, err := svc.AddItem(ctx, sid, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cart, err := svc.SetQuantity(ctx, sid, product.ID, 3)
	if err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}

	if cart.Items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", cart.Items[0].Quantity)
	}
	if !cart.Totals.TotalPrice.Equal(decimal.RequireFromString("172.5")) {
		t.Fatalf("total price = %s, want 172.5", cart.Totals.TotalPrice)
	}
}

func TestSetQuantityRejectsBelowOne(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)

	_, err := svc.SetQuantity(context.Background(), session.NewSessionID(), product.ID, 0)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveAbsentProductIsNoOp(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	sid := session.NewSessionID()

	if _, err := svc.AddItem(ctx, sid, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, sid, uuid.New())
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected untouched cart, got %d items", len(cart.Items))
	}
}

func TestClearItemsPreservesShippingAndPayment(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	sid := session.NewSessionID()

	address := types.Address{Line1: "12 Oxford St", City: "Accra", PostalCode: "GA-183", Country: "GH"}
	if _, err := svc.AddItem(ctx, sid, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.SaveShippingAddress(ctx, sid, address); err != nil {
		t.Fatalf("save address failed: %v", err)
	}
	if _, err := svc.SavePaymentMethod(ctx, sid, enums.PaymentMethodGateway); err != nil {
		t.Fatalf("save method failed: %v", err)
	}

	if err := svc.ClearItems(ctx, sid); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	cart, err := svc.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected empty item list after clear")
	}
	if cart.ShippingAddress == nil || cart.ShippingAddress.City != "Accra" {
		t.Fatal("shipping address must survive clear")
	}
	if cart.PaymentMethod == nil || *cart.PaymentMethod != enums.PaymentMethodGateway {
		t.Fatal("payment method must survive clear")
	}
}

func TestResetPurgesEverything(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	sid := session.NewSessionID()

	address := types.Address{Line1: "12 Oxford St", City: "Accra", PostalCode: "GA-183", Country: "GH"}
	if _, err := svc.AddItem(ctx, sid, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.SaveShippingAddress(ctx, sid, address); err != nil {
		t.Fatalf("save address failed: %v", err)
	}

	if err := svc.Reset(ctx, sid); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	cart, err := svc.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !cart.IsEmpty() || cart.ShippingAddress != nil || cart.PaymentMethod != nil {
		t.Fatal("expected fully empty cart after reset")
	}
}

func TestSessionsDoNotCrossContaminate(t *testing.T) {
	product := activeProduct("50", 10)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	first := session.NewSessionID()
	second := session.NewSessionID()

	if _, err := svc.AddItem(ctx, first, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.Get(ctx, second)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("second session must start empty")
	}
}

type failingStore struct{}

var errStoreDown = errors.New("storage unavailable")

func (failingStore) Put(context.Context, string, string, []byte) error { return errStoreDown }
func (failingStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Delete(context.Context, string, string) error { return errStoreDown }
func (failingStore) Purge(context.Context, string) error          { return errStoreDown }

func TestStorageFailuresDegradeToNoOps(t *testing.T) {
	product := activeProduct("50", 10)
	svc, err := NewService(failingStore{}, &stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}}, testPricing(), nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	ctx := context.Background()
	sid := session.NewSessionID()

	cart, err := svc.AddItem(ctx, sid, product.ID, 2)
	if err != nil {
		t.Fatalf("add must not fail on storage errors: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatal("in-memory mutation must survive a failed persist")
	}

	if err := svc.Reset(ctx, sid); err != nil {
		t.Fatalf("reset must not fail on storage errors: %v", err)
	}
}
