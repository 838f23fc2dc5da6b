package repeat

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"time"
)

func TestRepeat(t *testing.T) {
	calls := 0
	err := Repeat(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRepeatReturnsLastError(t *testing.T) {
	calls := 0
	err := Repeat(func() error {
		calls++
		return errors.New("down")
	}, 2, time.Millisecond)

	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{MaxAttempts: 6, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Second, p.Delay(5))
	assert.Equal(t, time.Second, p.Delay(30))
	assert.Equal(t, time.Duration(0), p.Delay(0))
}

func TestPolicyDelayWithoutCapNeverOverflows(t *testing.T) {
	p := Policy{MaxAttempts: 100, InitialDelay: time.Second}

	assert.Equal(t, 8*time.Second, p.Delay(4))
	prev := p.Delay(1)
	for attempt := 2; attempt <= 100; attempt++ {
		d := p.Delay(attempt)
		require.Positive(t, d, "attempt %d", attempt)
		require.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}
	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(100))
}

func TestBackoff(t *testing.T) {
	p := Policy{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}

	t.Run("stops when f is satisfied", func(t *testing.T) {
		var seen []int
		err := Backoff(context.Background(), p, func(attempt int) bool {
			seen = append(seen, attempt)
			return attempt < 2
		})
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2}, seen)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := Backoff(context.Background(), p, func(int) bool {
			calls++
			return true
		})
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		assert.Equal(t, 4, calls)
	})

	t.Run("honours cancellation while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := Policy{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour}
		calls := 0
		err := Backoff(ctx, slow, func(int) bool {
			calls++
			cancel()
			return true
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		err := Backoff(context.Background(), Policy{}, func(int) bool {
			calls++
			return true
		})
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		assert.Equal(t, 1, calls)
	})
}
