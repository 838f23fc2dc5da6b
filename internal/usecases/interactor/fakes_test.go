package interactor

import (
	"context"
	"errors"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"sort"
	"sync"
	"time"
)

type fakeTransactionRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.Transaction
	hidden  map[string]int
	lookups int
	updates int
	getErr  error
	listErr error
	// beforeUpdate runs ahead of every conditional update, outside the lock.
	beforeUpdate func(id string)
}

func newFakeTransactionRepository(txs ...models.Transaction) *fakeTransactionRepository {
	f := &fakeTransactionRepository{
		byID:   make(map[string]*models.Transaction),
		hidden: make(map[string]int),
	}
	for _, tx := range txs {
		tx := tx
		f.byID[tx.ID] = &tx
	}
	return f
}

// hide makes the next n lookups of gatewayTransactionID miss.
func (f *fakeTransactionRepository) hide(gatewayTransactionID string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[gatewayTransactionID] = n
}

func (f *fakeTransactionRepository) GetByGatewayTransactionID(_ context.Context, gatewayTransactionID string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if n := f.hidden[gatewayTransactionID]; n > 0 {
		f.hidden[gatewayTransactionID] = n - 1
		return nil, nil
	}
	for _, tx := range f.byID {
		if tx.GatewayTransactionID == gatewayTransactionID {
			c := *tx
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactionRepository) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	tx, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *tx
	return &c, nil
}

func (f *fakeTransactionRepository) ListPending(_ context.Context, gateway models.Gateway, createdBefore time.Time, limit int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Transaction, 0)
	for _, tx := range f.byID {
		if tx.Gateway == gateway && tx.Status == models.StatusPending && tx.CreatedAt.Before(createdBefore) {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTransactionRepository) UpdateStatusIfCurrent(_ context.Context, id string, expected, next models.Status) (bool, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byID[id]
	if !ok || tx.Status != expected {
		return false, nil
	}
	tx.Status = next
	tx.UpdatedAt = time.Now()
	f.updates++
	return true, nil
}

func (f *fakeTransactionRepository) status(id string) models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

func (f *fakeTransactionRepository) set(id string, status models.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Status = status
}

func (f *fakeTransactionRepository) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

type fakeCacheInvalidator struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeCacheInvalidator) Invalidate(_ context.Context, targets ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targets)
	return f.err
}

func (f *fakeCacheInvalidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLockStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: make(map[string]string)}
}

func (f *fakeLockStore) TrySet(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value
	return true, nil
}

func (f *fakeLockStore) Delete(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.values[key] == value {
		delete(f.values, key)
	}
	return nil
}

// expire drops key as if its TTL ran out.
func (f *fakeLockStore) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
}

func (f *fakeLockStore) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

var errGatewayDown = errors.New("gateway down")

type fakeQuerier struct {
	mu       sync.Mutex
	statuses map[string]models.NativeStatus
	errs     map[string]error
	calls    int
	// started receives once per call when set; block holds calls until closed.
	started chan struct{}
	block   chan struct{}
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		statuses: make(map[string]models.NativeStatus),
		errs:     make(map[string]error),
	}
}

func (f *fakeQuerier) QueryStatus(ctx context.Context, tx models.Transaction) (models.NativeStatus, error) {
	f.mu.Lock()
	f.calls++
	status, err := f.statuses[tx.GatewayTransactionID], f.errs[tx.GatewayTransactionID]
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.NativeStatus{}, ctx.Err()
		}
	}
	return status, err
}

func (f *fakeQuerier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
