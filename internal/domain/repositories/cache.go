package repositories

import "context"

// CacheInvalidator drops cached read models. Targets are exact keys or glob
// patterns.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, targets ...string) error
}
