package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryInvokeSucceedsAfterTransientFailures(t *testing.T) {
	policy := fastPolicy()
	attempts := 0

	err := retryInvoke(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryInvokeStopsOnPermanent(t *testing.T) {
	policy := fastPolicy()
	attempts := 0

	err := retryInvoke(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		return Permanent(errors.New("fatal"))
	})

	require.Error(t, err)
	require.Equal(t, "fatal", err.Error())
	require.Equal(t, 1, attempts)
}

func TestRetryInvokeRespectsMaxTries(t *testing.T) {
	policy := fastPolicy()
	policy.MaxTries = 2
	attempts := 0

	err := retryInvoke(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})

	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetryInvokeStopsOnContextCancel(t *testing.T) {
	policy := RetryPolicy{
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		MaxTries:        0,
		MaxTime:         0,
	}
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- retryInvoke(ctx, policy, func(ctx context.Context) error {
			attempts++
			return errors.New("always fails")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("retryInvoke did not stop after context cancellation")
	}
	require.GreaterOrEqual(t, attempts, 1)
}

func TestRetryInvokeRespectsMaxTime(t *testing.T) {
	policy := RetryPolicy{
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      1,
		MaxTries:        0,
		MaxTime:         30 * time.Millisecond,
	}

	start := time.Now()
	err := retryInvoke(context.Background(), policy, func(ctx context.Context) error {
		return errors.New("always fails")
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Less(t, elapsed, time.Second)
}
