package repeat

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrAttemptsExhausted is returned by Backoff when every attempt asked for a retry.
var ErrAttemptsExhausted = errors.New("repeat: attempts exhausted")

// Repeat calls f up to attempts times with a fixed delay between failures.
func Repeat(f func() error, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}

	return err
}

// Policy bounds an exponential backoff.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

const maxDuration = time.Duration(math.MaxInt64)

// Delay is the wait after the given failed attempt (1-based):
// InitialDelay * 2^(attempt-1), capped at MaxDelay. Without a MaxDelay the
// delay saturates instead of overflowing.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.InitialDelay <= 0 {
		return 0
	}
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		if d > maxDuration/2 {
			d = maxDuration
			break
		}
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Backoff calls f with attempt numbers starting at 1 until f returns false,
// MaxAttempts is reached or ctx is done. It returns nil when f stopped on its
// own, ErrAttemptsExhausted when the last attempt still asked for a retry and
// ctx.Err() when cancelled while waiting.
func Backoff(ctx context.Context, p Policy, f func(attempt int) (retry bool)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		if !f(attempt) {
			return nil
		}
		if attempt >= attempts {
			return ErrAttemptsExhausted
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
