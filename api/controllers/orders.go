package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/api/middleware"
	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/api/validators"
	"github.com/adepa-commerce/storefront-backend/internal/orders"
	"github.com/adepa-commerce/storefront-backend/internal/payments"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

type paymentVerifyBody struct {
	Reference   string `json:"reference" validate:"required"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

func actorFromContext(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (uuid.UUID, bool) {
	raw := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(raw)
	if raw == "" || err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
		return uuid.Nil, false
	}
	return userID, true
}

// OrderPlace converts the caller's cart into an order.
func OrderPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID, ok := actorFromContext(r, logg, w)
		if !ok {
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns the caller's order history, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID, ok := actorFromContext(r, logg, w)
		if !ok {
			return
		}

		params, err := validators.PaginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID, ok := actorFromContext(r, logg, w)
		if !ok {
			return
		}

		orderID, err := validators.UUIDParam("orderId", chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderVerifyPayment reconciles a gateway charge against the order and flips
// it to paid when the amounts agree. Re-verifying a paid order succeeds
// without changing anything.
func OrderVerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		userID, ok := actorFromContext(r, logg, w)
		if !ok {
			return
		}

		orderID, err := validators.UUIDParam("orderId", chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentVerifyBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), userID, orderID, payments.VerifyInput{
			Reference:   body.Reference,
			AmountMinor: body.AmountMinor,
			Currency:    body.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
