package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/adepa-commerce/storefront-backend/pkg/auth"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 60,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, isAdmin bool, sessionID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    userID,
		IsAdmin:   isAdmin,
		SessionID: sessionID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsContext(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, true, "sess-42")

	var gotUserID, gotSessionID string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotAdmin = IsAdminFromContext(r.Context())
		gotSessionID = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(cfg, nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotUserID != userID.String() {
		t.Fatalf("expected user id %s, got %q", userID, gotUserID)
	}
	if !gotAdmin {
		t.Fatalf("expected admin flag carried through")
	}
	if gotSessionID != "sess-42" {
		t.Fatalf("expected session id carried through, got %q", gotSessionID)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	Auth(testJWTConfig(), nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsForgedToken(t *testing.T) {
	t.Parallel()

	otherCfg := testJWTConfig()
	otherCfg.Secret = "some-other-secret"
	token := mintTestToken(t, otherCfg, uuid.New(), false, "sess-1")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(testJWTConfig(), nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	t.Parallel()

	var sawUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/enter", nil)
	resp := httptest.NewRecorder()
	OptionalAuth(testJWTConfig(), nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if sawUserID != "" {
		t.Fatalf("expected empty user id for anonymous request, got %q", sawUserID)
	}
}

func TestRequireAdminForbidsCustomers(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req = req.WithContext(WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	RequireAdmin(nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireAdminAllowsAdmins(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	ctx := WithUserID(req.Context(), uuid.NewString())
	ctx = WithIsAdmin(ctx, true)
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()
	RequireAdmin(nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRejectAdminBarsAdminsFromCustomerRoutes(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	ctx := WithUserID(req.Context(), uuid.NewString())
	ctx = WithIsAdmin(ctx, true)
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()
	RejectAdmin(nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRejectAdminLetsCustomersThrough(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req = req.WithContext(WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	RejectAdmin(nil)(next).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
