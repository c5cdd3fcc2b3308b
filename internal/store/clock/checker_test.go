package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/stretchr/testify/require"
)

func TestCheckerHealthy(t *testing.T) {
	c := NewChecker(WithThreshold(time.Second))
	c.QueryFunc = func(string) (*ntp.Response, error) {
		return &ntp.Response{ClockOffset: 10 * time.Millisecond}, nil
	}
	c.check()

	status := c.Status()
	require.Equal(t, PhaseHealthy, status.Phase)
	require.Empty(t, status.Error)
}

func TestCheckerUnhealthyOffset(t *testing.T) {
	c := NewChecker(WithThreshold(50 * time.Millisecond))
	c.QueryFunc = func(string) (*ntp.Response, error) {
		return &ntp.Response{ClockOffset: time.Second}, nil
	}
	c.check()

	require.Equal(t, PhaseUnhealthyOffset, c.Status().Phase)
}

func TestCheckerError(t *testing.T) {
	c := NewChecker()
	c.QueryFunc = func(string) (*ntp.Response, error) {
		return nil, errors.New("no route to ntp pool")
	}
	c.check()

	status := c.Status()
	require.Equal(t, PhaseError, status.Phase)
	require.Equal(t, "no route to ntp pool", status.Error)
}

func TestCheckerRunStopsOnCancel(t *testing.T) {
	c := NewChecker(WithInterval(time.Millisecond))
	c.QueryFunc = func(string) (*ntp.Response, error) {
		return &ntp.Response{ClockOffset: 0}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
