package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/api/validators"
	"github.com/adepa-commerce/storefront-backend/internal/products"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

type productUpsertBody struct {
	Name         string  `json:"name" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Brand        *string `json:"brand,omitempty"`
	Category     *string `json:"category,omitempty"`
	ImageURL     string  `json:"image_url"`
	Price        string  `json:"price" validate:"required"`
	CountInStock int     `json:"count_in_stock" validate:"min=0"`
	IsActive     bool    `json:"is_active"`
}

func (b productUpsertBody) toInput() (products.UpsertInput, error) {
	price, err := decimal.NewFromString(b.Price)
	if err != nil {
		return products.UpsertInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string")
	}
	return products.UpsertInput{
		Name:         b.Name,
		Description:  b.Description,
		Brand:        b.Brand,
		Category:     b.Category,
		ImageURL:     b.ImageURL,
		Price:        price,
		CountInStock: b.CountInStock,
		IsActive:     b.IsActive,
	}, nil
}

// ProductList serves the public catalog with keyword search.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.PaginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), products.ListQuery{
			Keyword:    r.URL.Query().Get("keyword"),
			OnlyActive: true,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.UUIDParam("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductCreate adds a catalog entry.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productUpsertBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.UUIDParam("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productUpsertBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductDeactivate removes a product from sale without deleting it.
func AdminProductDeactivate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.UUIDParam("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
