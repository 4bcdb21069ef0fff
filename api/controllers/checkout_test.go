package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/api/middleware"
	"github.com/adepa-commerce/storefront-backend/internal/checkout"
)

type stubCheckoutService struct {
	decision checkout.Decision
	err      error

	lastActor *checkout.Actor
	lastStep  checkout.Step
}

func (s *stubCheckoutService) Enter(_ context.Context, actor *checkout.Actor, _ string, step checkout.Step) (checkout.Decision, error) {
	s.lastActor = actor
	s.lastStep = step
	return s.decision, s.err
}

func TestCheckoutEnterAllowed(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{
		decision: checkout.Decision{Allowed: true, Step: checkout.StepShipping},
	}
	handler := CheckoutEnter(svc, nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/enter", strings.NewReader(`{"step":"shipping"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithSessionID(ctx, "sess-1")
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data checkout.Decision `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Allowed {
		t.Fatalf("expected allowed decision")
	}
	if svc.lastActor == nil || svc.lastActor.UserID != userID {
		t.Fatalf("expected actor forwarded to sequencer")
	}
	if svc.lastStep != checkout.StepShipping {
		t.Fatalf("expected shipping step, got %s", svc.lastStep)
	}
}

func TestCheckoutEnterAnonymousGetsNilActor(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{
		decision: checkout.Decision{
			Allowed:    false,
			Step:       checkout.StepPayment,
			RedirectTo: checkout.StepSignIn,
			ResumeTo:   checkout.StepPayment,
		},
	}
	handler := CheckoutEnter(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/enter", strings.NewReader(`{"step":"payment"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastActor != nil {
		t.Fatalf("expected nil actor for anonymous caller")
	}

	var envelope struct {
		Data checkout.Decision `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RedirectTo != checkout.StepSignIn {
		t.Fatalf("expected sign-in redirect, got %s", envelope.Data.RedirectTo)
	}
	if envelope.Data.ResumeTo != checkout.StepPayment {
		t.Fatalf("expected resume step preserved, got %s", envelope.Data.ResumeTo)
	}
}

func TestCheckoutEnterRejectsMissingStep(t *testing.T) {
	t.Parallel()

	handler := CheckoutEnter(&stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/enter", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
