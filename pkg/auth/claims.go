package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	IsAdmin   bool
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued to clients. SessionID is
// the opaque browsing-context identifier that namespaces checkout state.
type AccessTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	SessionID string    `json:"session_id"`
	jwt.RegisteredClaims
}
