package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/metrics"
	"github.com/adepa-commerce/storefront-backend/pkg/paystack"
)

type orderLifecycle interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	RecordPaymentVerified(ctx context.Context, orderID uuid.UUID, reference string) (bool, error)
}

type provider interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
	TrustsClient() bool
}

// VerifyInput carries the client's declared transaction details. Declared
// values are only authoritative in trusted-signal mode; otherwise the
// provider's record wins.
type VerifyInput struct {
	Reference   string
	AmountMinor int64
	Currency    string
}

// VerifyResult reports the post-verification order state. AlreadyPaid marks
// the duplicate-call no-op.
type VerifyResult struct {
	Order       *models.Order `json:"order"`
	AlreadyPaid bool          `json:"already_paid"`
}

// Service is the reconciliation bridge: the only path that flips an order
// to paid.
type Service interface {
	Verify(ctx context.Context, userID, orderID uuid.UUID, input VerifyInput) (*VerifyResult, error)
}

type service struct {
	orders   orderLifecycle
	provider provider
	metrics  *metrics.PaymentMetrics
	logg     *logger.Logger
}

// NewService wires the bridge to the order lifecycle and the provider.
func NewService(orders orderLifecycle, p provider, m *metrics.PaymentMetrics, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order lifecycle required")
	}
	if p == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	return &service{orders: orders, provider: p, metrics: m, logg: logg}, nil
}

// Verify confirms the charge server-side and conditionally flips is_paid.
// The whole check runs against the order's frozen totals; the client's
// widget callback is never trusted on its own.
func (s *service) Verify(ctx context.Context, userID, orderID uuid.UUID, input VerifyInput) (*VerifyResult, error) {
	started := time.Now()
	result, err := s.verify(ctx, userID, orderID, input)
	s.metrics.ObserveDuration("verify", time.Since(started))
	s.metrics.IncOutcome(outcomeLabel(result, err))
	return result, err
}

func (s *service) verify(ctx context.Context, userID, orderID uuid.UUID, input VerifyInput) (*VerifyResult, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	order, err := s.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	// Duplicate verification of a paid order is a success no-op.
	if order.IsPaid {
		return &VerifyResult{Order: order, AlreadyPaid: true}, nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("order is %s and cannot be paid", order.Status))
	}
	if order.PaymentMethod != enums.PaymentMethodGateway {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOrderState, "order is not a gateway payment")
	}

	amountMinor := input.AmountMinor
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if !s.provider.TrustsClient() {
		tx, err := s.provider.VerifyTransaction(ctx, reference)
		if err != nil {
			return nil, mapProviderError(err)
		}
		if !tx.Succeeded() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment was not successful").
				WithDetails(map[string]any{"provider_status": tx.Status})
		}
		amountMinor = tx.AmountMinor
		currency = strings.ToUpper(strings.TrimSpace(tx.Currency))
	}

	expectedMinor := order.TotalPrice.Shift(2).IntPart()
	if amountMinor != expectedMinor || currency != order.Currency.String() {
		return nil, pkgerrors.New(pkgerrors.CodeAmountMismatch, "payment does not match the order total").
			WithDetails(map[string]any{
				"expected_amount_minor": expectedMinor,
				"received_amount_minor": amountMinor,
				"expected_currency":     order.Currency.String(),
				"received_currency":     currency,
			})
	}

	updated, err := s.orders.RecordPaymentVerified(ctx, orderID, reference)
	if err != nil {
		return nil, err
	}

	order, err = s.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !updated {
		// A concurrent verification won the conditional update.
		return &VerifyResult{Order: order, AlreadyPaid: true}, nil
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, orderID.String())
		s.logg.Info(s.logg.WithField(ctx, "payment_reference", reference), "payment verified")
	}
	return &VerifyResult{Order: order}, nil
}

func mapProviderError(err error) error {
	switch {
	case errors.Is(err, paystack.ErrUnavailable):
		return pkgerrors.Wrap(pkgerrors.CodeProviderUnavailable, err, "payment provider unavailable")
	case errors.Is(err, paystack.ErrTransactionNotFound):
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction reference not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify transaction")
	}
}

func outcomeLabel(result *VerifyResult, err error) string {
	switch {
	case err == nil && result != nil && result.AlreadyPaid:
		return "already_paid"
	case err == nil:
		return "verified"
	case pkgerrors.HasCode(err, pkgerrors.CodeAmountMismatch):
		return "amount_mismatch"
	case pkgerrors.HasCode(err, pkgerrors.CodeProviderUnavailable):
		return "provider_unavailable"
	default:
		return "rejected"
	}
}
