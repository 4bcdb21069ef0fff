package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/api/middleware"
	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/api/validators"
	"github.com/adepa-commerce/storefront-backend/internal/checkout"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

type checkoutEnterBody struct {
	Step string `json:"step" validate:"required"`
}

// CheckoutEnter evaluates the guards for a checkout step and returns the
// routing decision. Anonymous callers are redirected to sign-in with the
// requested step preserved.
func CheckoutEnter(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkoutEnterBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var actor *checkout.Actor
		if rawID := middleware.UserIDFromContext(r.Context()); rawID != "" {
			userID, err := uuid.Parse(rawID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
				return
			}
			actor = &checkout.Actor{
				UserID:  userID,
				IsAdmin: middleware.IsAdminFromContext(r.Context()),
			}
		}

		sessionID := middleware.SessionIDFromContext(r.Context())

		decision, err := svc.Enter(r.Context(), actor, sessionID, checkout.Step(body.Step))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, decision)
	}
}
