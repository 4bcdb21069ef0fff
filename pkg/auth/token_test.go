package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/pkg/config"
)

func testCfg() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "token-test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testCfg()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:    userID,
		IsAdmin:   true,
		SessionID: "sess-9",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected admin flag preserved")
	}
	if claims.SessionID != "sess-9" {
		t.Fatalf("expected session id preserved, got %q", claims.SessionID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testCfg()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:    uuid.New(),
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	cfg := testCfg()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID:    uuid.New(),
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestMintRequiresSessionID(t *testing.T) {
	t.Parallel()

	_, err := MintAccessToken(testCfg(), time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err == nil {
		t.Fatalf("expected error for missing session id")
	}
}
