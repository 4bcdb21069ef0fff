package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adepa-commerce/storefront-backend/api/middleware"
	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/api/validators"
	"github.com/adepa-commerce/storefront-backend/internal/cart"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/types"
)

type cartItemBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type shippingAddressBody struct {
	Line1      string `json:"line1" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
}

type paymentMethodBody struct {
	Method string `json:"method" validate:"required"`
}

func cartSessionID(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
		return "", false
	}
	return sessionID, true
}

// CartFetch returns the caller's cart with recomputed totals.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		result, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartAddItem sets the cart line for a product to the requested quantity.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		var body cartItemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.UUIDParam("product_id", body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), sessionID, productID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartSetQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		productID, err := validators.UUIDParam("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body struct {
			Quantity int `json:"quantity" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SetQuantity(r.Context(), sessionID, productID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		productID, err := validators.UUIDParam("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RemoveItem(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartSaveShippingAddress stores the delivery address for this browsing session.
func CartSaveShippingAddress(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		var body shippingAddressBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SaveShippingAddress(r.Context(), sessionID, types.Address{
			Line1:      body.Line1,
			City:       body.City,
			PostalCode: body.PostalCode,
			Country:    body.Country,
			Phone:      body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartSavePaymentMethod(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		var body paymentMethodBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}

		result, err := svc.SavePaymentMethod(r.Context(), sessionID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartClear empties the item list while keeping checkout preferences.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		if err := svc.ClearItems(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartReset wipes every session record for this browsing context.
func CartReset(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, ok := cartSessionID(r, logg, w)
		if !ok {
			return
		}

		if err := svc.Reset(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reset"})
	}
}
