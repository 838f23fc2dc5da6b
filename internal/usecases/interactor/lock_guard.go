package interactor

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

// Lease is the outcome of a lock acquisition attempt.
type Lease struct {
	Key      string
	Acquired bool
	// FailOpen is set when the lock store could not be reached and the
	// caller runs without mutual exclusion.
	FailOpen bool
	value    string
}

// Proceed reports whether the caller may run its critical section.
func (l Lease) Proceed() bool {
	return l.Acquired || l.FailOpen
}

type lockRecord struct {
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// LockGuard hands out TTL bounded, cluster wide mutual exclusion keys.
type LockGuard struct {
	store   repositories.LockStore
	timeout time.Duration
	owner   string
	now     func() time.Time
	logger  *zerolog.Logger
}

// NewLockGuard bounds every store call by timeout (no bound when zero).
func NewLockGuard(store repositories.LockStore, timeout time.Duration) *LockGuard {
	return &LockGuard{
		store:   store,
		timeout: timeout,
		owner:   uuid.NewString(),
		now:     time.Now,
		logger:  log.Component("lock"),
	}
}

func (g *LockGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) Lease {
	lease := Lease{Key: key}
	logger := g.logger.With().Str("key", key).Logger()

	if g.store == nil {
		logger.Warn().Msg(apperrors.ErrLockUnavailable)
		lease.FailOpen = true
		return lease
	}

	value, err := json.Marshal(lockRecord{Owner: g.owner, AcquiredAt: g.now().UTC()})
	if err != nil {
		logger.Warn().Err(err).Msg(apperrors.ErrLockUnavailable)
		lease.FailOpen = true
		return lease
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	ok, err := g.store.TrySet(ctx, key, string(value), ttl)
	if err != nil {
		logger.Warn().Err(err).Msg(apperrors.ErrLockUnavailable)
		lease.FailOpen = true
		return lease
	}

	lease.Acquired = ok
	lease.value = string(value)
	if !ok {
		logger.Info().Msg("lock held by another run")
	}
	return lease
}

// Release drops the key if this lease still owns it. Fail-open and refused
// leases are ignored.
func (g *LockGuard) Release(ctx context.Context, lease Lease) {
	if !lease.Acquired || g.store == nil {
		return
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	if err := g.store.Delete(ctx, lease.Key, lease.value); err != nil {
		g.logger.Warn().Err(err).Str("key", lease.Key).Msg(apperrors.ErrFailedReleaseLock)
	}
}

func (g *LockGuard) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
