package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/internal/cart"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

// Step is one gate in the linear checkout flow. Each step's guard validates
// the output of the previous step before entry is allowed.
type Step string

const (
	StepSignIn   Step = "sign_in"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
	StepPlace    Step = "place"
)

var orderedSteps = []Step{StepSignIn, StepShipping, StepPayment, StepReview, StepPlace}

// IsValid reports whether the value is a known checkout step.
func (s Step) IsValid() bool {
	for _, candidate := range orderedSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity attempting to enter a step. A nil
// actor means no authenticated user is present.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// AdminConsolePath is where an admin identity is sent after being turned
// away from the customer checkout.
const AdminConsolePath = "/admin/orders"

// Decision is the outcome of a guard evaluation. When entry is denied the
// caller is redirected; ResumeTo preserves the original destination so a
// post-login return lands back where the customer was headed. RedirectPath
// points outside the step flow and is only set for admin rejections.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Step         Step   `json:"step"`
	RedirectTo   Step   `json:"redirect_to,omitempty"`
	RedirectPath string `json:"redirect_path,omitempty"`
	ResumeTo     Step   `json:"resume_to,omitempty"`
	Notice       string `json:"notice,omitempty"`
}

type cartReader interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Reset(ctx context.Context, sessionID string) error
}

// Service gates progression through the checkout flow.
type Service interface {
	Enter(ctx context.Context, actor *Actor, sessionID string, step Step) (Decision, error)
}

type service struct {
	carts cartReader
	logg  *logger.Logger
}

// NewService builds the checkout sequencer on top of the cart store.
func NewService(carts cartReader, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	return &service{carts: carts, logg: logg}, nil
}

// Enter evaluates the guard for the requested step. Re-entering an already
// satisfied step is an allowed no-op, never an error.
func (s *service) Enter(ctx context.Context, actor *Actor, sessionID string, step Step) (Decision, error) {
	if !step.IsValid() {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout step")
	}
	if sessionID == "" {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	// Admin identity and customer checkout are mutually exclusive. The whole
	// session is reset, shipping and payment choices included, so an admin
	// never carries customer state.
	if actor != nil && actor.IsAdmin {
		if err := s.carts.Reset(ctx, sessionID); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("resetting admin cart: %v", err))
		}
		return Decision{
			Allowed:      false,
			Step:         step,
			RedirectPath: AdminConsolePath,
			Notice:       "admin accounts cannot use the customer checkout",
		}, nil
	}

	if step == StepSignIn {
		return Decision{Allowed: true, Step: step}, nil
	}

	if actor == nil || actor.UserID == uuid.Nil {
		return Decision{
			Allowed:    false,
			Step:       step,
			RedirectTo: StepSignIn,
			ResumeTo:   step,
			Notice:     "sign in to continue checkout",
		}, nil
	}

	if step == StepShipping {
		return Decision{Allowed: true, Step: step}, nil
	}

	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Decision{}, err
	}

	if current.ShippingAddress == nil || !current.ShippingAddress.Complete() {
		return Decision{
			Allowed:    false,
			Step:       step,
			RedirectTo: StepShipping,
			Notice:     "a complete shipping address is required",
		}, nil
	}

	if step == StepPayment {
		return Decision{Allowed: true, Step: step}, nil
	}

	if current.PaymentMethod == nil {
		return Decision{
			Allowed:    false,
			Step:       step,
			RedirectTo: StepPayment,
			Notice:     "choose a payment method to continue",
		}, nil
	}

	return Decision{Allowed: true, Step: step}, nil
}
