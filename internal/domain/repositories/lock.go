package repositories

import (
	"context"
	"time"
)

// LockStore is a key-value store with server side expiry.
type LockStore interface {
	// TrySet stores value under key only if key is absent.
	TrySet(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes key while it still holds value.
	Delete(ctx context.Context, key, value string) error
}
