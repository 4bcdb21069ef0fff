package session

import (
	"context"

	"github.com/google/uuid"
)

// Record kinds namespaced under one session id. Each kind is stored as an
// independent record so partial writes never corrupt sibling state.
const (
	KindCartItems       = "cartItems"
	KindShippingAddress = "shippingAddress"
	KindPaymentMethod   = "paymentMethod"
)

// RecordKinds lists every kind a session can own. Purge walks this list.
var RecordKinds = []string{
	KindCartItems,
	KindShippingAddress,
	KindPaymentMethod,
}

// Store persists per-session checkout state keyed by <kind>_<sessionID>.
type Store interface {
	Put(ctx context.Context, kind, sessionID string, value []byte) error
	Get(ctx context.Context, kind, sessionID string) ([]byte, bool, error)
	Delete(ctx context.Context, kind, sessionID string) error
	Purge(ctx context.Context, sessionID string) error
}

// NewSessionID mints an opaque browsing-context identifier. The value carries
// no user data; it only namespaces session records.
func NewSessionID() string {
	return uuid.NewString()
}
