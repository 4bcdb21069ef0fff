package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/api/validators"
	"github.com/adepa-commerce/storefront-backend/internal/orders"
	"github.com/adepa-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

type setStatusBody struct {
	Status string `json:"status" validate:"required"`
}

func adminOrderIDs(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (actorID, orderID uuid.UUID, ok bool) {
	actorID, ok = actorFromContext(r, logg, w)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err := validators.UUIDParam("orderId", chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return actorID, orderID, true
}

// AdminOrderList pages through every order in the store.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := validators.PaginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.UUIDParam("orderId", chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetAny(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderMarkPaid settles a cash-on-delivery order.
func AdminOrderMarkPaid(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actorID, orderID, ok := adminOrderIDs(r, logg, w)
		if !ok {
			return
		}

		order, err := svc.MarkPaid(r.Context(), actorID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func AdminOrderMarkDelivered(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actorID, orderID, ok := adminOrderIDs(r, logg, w)
		if !ok {
			return
		}

		order, err := svc.MarkDelivered(r.Context(), actorID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderSetStatus moves a non-terminal order to the requested status.
func AdminOrderSetStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actorID, orderID, ok := adminOrderIDs(r, logg, w)
		if !ok {
			return
		}

		var body setStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		order, err := svc.SetStatus(r.Context(), actorID, orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func AdminOrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actorID, orderID, ok := adminOrderIDs(r, logg, w)
		if !ok {
			return
		}

		order, err := svc.Cancel(r.Context(), actorID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderAudits returns the override trail for an order.
func AdminOrderAudits(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.UUIDParam("orderId", chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audits, err := svc.ListAudits(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, audits)
	}
}
