package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/internal/cart"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

type stubCarts struct {
	cart  *cart.Cart
	reset bool
}

func (s *stubCarts) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
	if s.cart != nil {
		return s.cart, nil
	}
	return &cart.Cart{SessionID: sessionID}, nil
}

func (s *stubCarts) Reset(context.Context, string) error {
	s.reset = true
	if s.cart != nil {
		s.cart.Items = nil
		s.cart.ShippingAddress = nil
		s.cart.PaymentMethod = nil
	}
	return nil
}

func completeAddress() *types.Address {
	return &types.Address{Line1: "12 Oxford St", City: "Accra", PostalCode: "GA-183", Country: "GH"}
}

func customer() *Actor {
	return &Actor{UserID: uuid.New()}
}

func TestEnterShippingRequiresSignIn(t *testing.T) {
	svc, _ := NewService(&stubCarts{}, nil)

	decision, err := svc.Enter(context.Background(), nil, "sid", StepShipping)
	if err != nil {
		t.Fatalf("enter failed: %v", err)
	}
	if decision.Allowed {
		t.Fatal("anonymous actor must not enter shipping")
	}
	if decision.RedirectTo != StepSignIn {
		t.Fatalf("redirect = %s, want sign_in", decision.RedirectTo)
	}
	if decision.ResumeTo != StepShipping {
		t.Fatalf("resume = %s, want shipping (post-login destination preserved)", decision.ResumeTo)
	}
}

func TestEnterPaymentRequiresCompleteAddress(t *testing.T) {
	carts := &stubCarts{cart: &cart.Cart{
		ShippingAddress: &types.Address{Line1: "12 Oxford St"},
	}}
	svc, _ := NewService(carts, nil)

	decision, err := svc.Enter(context.Background(), customer(), "sid", StepPayment)
	if err != nil {
		t.Fatalf("enter failed: %v", err)
	}
	if decision.Allowed {
		t.Fatal("partial address must not satisfy the payment guard")
	}
	if decision.RedirectTo != StepShipping {
		t.Fatalf("redirect = %s, want shipping", decision.RedirectTo)
	}
}

func TestEnterPlaceRequiresPaymentMethod(t *testing.T) {
	carts := &stubCarts{cart: &cart.Cart{ShippingAddress: completeAddress()}}
	svc, _ := NewService(carts, nil)

	decision, err := svc.Enter(context.Background(), customer(), "sid", StepPlace)
	if err != nil {
		t.Fatalf("enter failed: %v", err)
	}
	if decision.Allowed {
		t.Fatal("place must not be reachable without a payment method")
	}
	if decision.RedirectTo != StepPayment {
		t.Fatalf("redirect = %s, want payment", decision.RedirectTo)
	}
}

func TestEnterPlaceWithFullStateSucceeds(t *testing.T) {
	method := enums.PaymentMethodGateway
	carts := &stubCarts{cart: &cart.Cart{
		ShippingAddress: completeAddress(),
		PaymentMethod:   &method,
	}}
	svc, _ := NewService(carts, nil)

	decision, err := svc.Enter(context.Background(), customer(), "sid", StepPlace)
	if err != nil {
		t.Fatalf("enter failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected entry, got redirect to %s", decision.RedirectTo)
	}
}

func TestReEnteringSatisfiedStepIsIdempotent(t *testing.T) {
	method := enums.PaymentMethodGateway
	carts := &stubCarts{cart: &cart.Cart{
		ShippingAddress: completeAddress(),
		PaymentMethod:   &method,
	}}
	svc, _ := NewService(carts, nil)
	actor := customer()

	for i := 0; i < 3; i++ {
		decision, err := svc.Enter(context.Background(), actor, "sid", StepPayment)
		if err != nil {
			t.Fatalf("enter %d failed: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("re-entry %d denied", i)
		}
	}
}

func TestAdminIsRejectedFromEveryStepAndSessionReset(t *testing.T) {
	admin := &Actor{UserID: uuid.New(), IsAdmin: true}
	method := enums.PaymentMethodGateway

	for _, step := range orderedSteps {
		carts := &stubCarts{cart: &cart.Cart{
			Items:           []cart.Item{{Quantity: 1}},
			ShippingAddress: completeAddress(),
			PaymentMethod:   &method,
		}}
		svc, _ := NewService(carts, nil)

		decision, err := svc.Enter(context.Background(), admin, "sid", step)
		if err != nil {
			t.Fatalf("enter %s failed: %v", step, err)
		}
		if decision.Allowed {
			t.Fatalf("admin must be barred from step %s", step)
		}
		if decision.RedirectPath != AdminConsolePath {
			t.Fatalf("redirect path = %q, want admin console", decision.RedirectPath)
		}
		if decision.Notice == "" {
			t.Fatalf("admin rejection at %s must carry a notice", step)
		}
		if !carts.reset {
			t.Fatalf("session must be reset when admin hits step %s", step)
		}
		if carts.cart.ShippingAddress != nil || carts.cart.PaymentMethod != nil {
			t.Fatalf("shipping and payment selections must not survive an admin at step %s", step)
		}
	}
}

func TestEnterUnknownStepFails(t *testing.T) {
	svc, _ := NewService(&stubCarts{}, nil)

	_, err := svc.Enter(context.Background(), customer(), "sid", Step("warehouse"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
