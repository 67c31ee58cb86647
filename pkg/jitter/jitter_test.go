package jitter

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_Capped(t *testing.T) {
	d := ExponentialBackoff(time.Millisecond, 4*time.Millisecond, 10, 0)
	assert.Equal(t, 4*time.Millisecond, d)

	d = ExponentialBackoff(time.Millisecond, time.Second, 2, 0)
	assert.Equal(t, 4*time.Millisecond, d)
}

func TestDurationWithSeed_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		d := DurationWithSeed(time.Second, DefaultJitter, rng)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Microsecond, time.Millisecond, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	boom := errors.New("boom")
	err = Retry(context.Background(), 2, time.Microsecond, time.Millisecond, func(int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 5, time.Hour, time.Hour, func(int) error { return errors.New("fail") })
	assert.ErrorIs(t, err, context.Canceled)
}
