package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Limit int    `json:"limit" validate:"min=1,max=100"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ama","email":"ama@example.com","limit":10}`))

	var dest samplePayload
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dest.Name != "Ama" || dest.Limit != 10 {
		t.Fatalf("unexpected payload: %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ama","email":"ama@example.com","limit":10,"extra":true}`))

	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldMessages(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","limit":500}`))

	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected typed validation error, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("expected name message, got %q", details["name"])
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("expected email message, got %q", details["email"])
	}
	if details["limit"] != "must be at most 100" {
		t.Fatalf("expected limit message, got %q", details["limit"])
	}
}

func TestPaginationFromQueryDefaults(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/?cursor=abc", nil)
	params, err := PaginationFromQuery(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.Limit != 25 {
		t.Fatalf("expected default limit 25, got %d", params.Limit)
	}
	if params.Cursor != "abc" {
		t.Fatalf("expected cursor carried through, got %q", params.Cursor)
	}

	req = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err := PaginationFromQuery(req); err == nil {
		t.Fatalf("expected error for non-integer limit")
	}
}
