package app

import (
	"context"
	"fmt"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

type recordingExecutor struct {
	mu    sync.Mutex
	calls []models.Gateway
	err   error
}

func (r *recordingExecutor) Execute(_ context.Context, gateway models.Gateway) (dtos.PollSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, gateway)
	return dtos.PollSummary{Gateway: gateway}, r.err
}

func (r *recordingExecutor) snapshot() []models.Gateway {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Gateway(nil), r.calls...)
}

func TestPollProcessRunsEveryGatewayPerTick(t *testing.T) {
	executor := &recordingExecutor{}
	process := NewPollProcess(executor, []models.Gateway{models.GatewayBank, models.GatewayCheckout}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- process.Run(ctx) }()

	require.Eventually(t, func() bool { return len(executor.snapshot()) >= 4 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poll process did not stop")
	}

	calls := executor.snapshot()
	assert.Equal(t, models.GatewayBank, calls[0])
	assert.Equal(t, models.GatewayCheckout, calls[1])
}

func TestPollProcessKeepsRunningAfterErrors(t *testing.T) {
	executor := &recordingExecutor{err: fmt.Errorf("database unavailable")}
	process := NewPollProcess(executor, []models.Gateway{models.GatewayBank}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go process.Run(ctx)

	require.Eventually(t, func() bool { return len(executor.snapshot()) >= 3 }, time.Second, time.Millisecond)
}

func TestPollProcessTickStopsOnCancelledContext(t *testing.T) {
	executor := &recordingExecutor{}
	process := NewPollProcess(executor, []models.Gateway{models.GatewayBank, models.GatewayCheckout}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	process.tick(ctx)

	assert.Empty(t, executor.snapshot())
}
