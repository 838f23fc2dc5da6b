package interactor

import (
	"context"
	"errors"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var fastPolicy = repeat.Policy{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}

func TestRetryWaitsForLateTransaction(t *testing.T) {
	repo := newFakeTransactionRepository(pendingTx("1", "TX1", time.Minute))
	repo.hide("TX1", 2)
	retry := NewRetryInteractor(NewReconcileInteractor(repo, &fakeCacheInvalidator{}, testPatterns), fastPolicy)

	result := retry.Reconcile(context.Background(), "TX1", models.StatusApproved)

	require.NoError(t, result.Err)
	assert.True(t, result.StatusUpdated)
	assert.Equal(t, 3, repo.lookupCount())
	assert.Equal(t, models.StatusApproved, repo.status("1"))
}

func TestRetryExhaustsAttempts(t *testing.T) {
	repo := newFakeTransactionRepository()
	retry := NewRetryInteractor(NewReconcileInteractor(repo, &fakeCacheInvalidator{}, testPatterns), fastPolicy)

	result := retry.Reconcile(context.Background(), "TX404", models.StatusApproved)

	var notVisible *apperrors.TransactionNotVisibleError
	require.ErrorAs(t, result.Err, &notVisible)
	assert.Equal(t, "TX404", notVisible.GatewayTransactionID)
	assert.False(t, result.TransactionFound)
	assert.Equal(t, fastPolicy.MaxAttempts, repo.lookupCount())
}

func TestRetryDoesNotRetryFoundTransactions(t *testing.T) {
	tx := pendingTx("1", "TX1", time.Minute)
	tx.Status = models.StatusRefused
	repo := newFakeTransactionRepository(tx)
	retry := NewRetryInteractor(NewReconcileInteractor(repo, &fakeCacheInvalidator{}, testPatterns), fastPolicy)

	result := retry.Reconcile(context.Background(), "TX1", models.StatusApproved)

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.False(t, result.StatusUpdated)
	assert.Equal(t, 1, repo.lookupCount())
}

func TestRetryDoesNotRetryErrors(t *testing.T) {
	repo := newFakeTransactionRepository()
	repo.getErr = errors.New("connection refused")
	retry := NewRetryInteractor(NewReconcileInteractor(repo, &fakeCacheInvalidator{}, testPatterns), fastPolicy)

	result := retry.Reconcile(context.Background(), "TX1", models.StatusApproved)

	assert.EqualError(t, result.Err, "connection refused")
	assert.Equal(t, 1, repo.lookupCount())
}

func TestRetryStopsOnCancellation(t *testing.T) {
	repo := newFakeTransactionRepository()
	policy := repeat.Policy{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}
	retry := NewRetryInteractor(NewReconcileInteractor(repo, &fakeCacheInvalidator{}, testPatterns), policy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := retry.Reconcile(ctx, "TX1", models.StatusApproved)

	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Equal(t, 1, repo.lookupCount())
}
