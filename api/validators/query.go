package validators

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/pagination"
)

// PaginationFromQuery reads limit and cursor query parameters.
func PaginationFromQuery(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
	raw := r.URL.Query().Get("limit")
	if raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be an integer")
		}
		params.Limit = limit
	}
	params.Limit = pagination.NormalizeLimit(params.Limit)
	return params, nil
}

// UUIDParam validates that value is a well formed uuid.
func UUIDParam(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a valid uuid")
	}
	return id, nil
}
