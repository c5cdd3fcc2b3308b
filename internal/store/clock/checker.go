// Package clock provides a diagnostic NTP offset checker. It never feeds
// into online_until comparisons — those always use the local wall clock,
// per the liveness invariant — but its Status is attached to GetNodes and
// GetRun responses so operators can tell a "looks offline" node from a
// "server clock is wrong" cluster.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

const (
	defaultPool      = "pool.ntp.org"
	defaultInterval  = 60 * time.Second
	defaultThreshold = 500 * time.Millisecond
)

type Phase uint8

const (
	PhaseUnchecked Phase = iota + 1
	PhaseHealthy
	PhaseUnhealthyOffset
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseUnchecked:
		return "unchecked"
	case PhaseHealthy:
		return "healthy"
	case PhaseUnhealthyOffset:
		return "unhealthy_offset"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the last NTP query.
type Status struct {
	Offset    time.Duration
	Phase     Phase
	Error     string
	CheckedAt time.Time
}

// Checker periodically queries an NTP pool and keeps the last measurement
// available for read by RPC handlers. It is purely informational.
type Checker struct {
	mu        sync.RWMutex
	status    Status
	pool      string
	interval  time.Duration
	threshold time.Duration

	// QueryFunc overrides the real NTP query, for tests.
	QueryFunc func(pool string) (*ntp.Response, error)
}

// NewChecker builds a Checker against the default NTP pool. Opts customize
// the pool, polling interval, and healthy-offset threshold.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		pool:      defaultPool,
		interval:  defaultInterval,
		threshold: defaultThreshold,
		status:    Status{Phase: PhaseUnchecked},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Checker)

func WithPool(pool string) Option {
	return func(c *Checker) { c.pool = pool }
}

func WithInterval(d time.Duration) Option {
	return func(c *Checker) { c.interval = d }
}

func WithThreshold(d time.Duration) Option {
	return func(c *Checker) { c.threshold = d }
}

// Run blocks, polling on Checker's interval until ctx is canceled. Callers
// start it in its own goroutine at process startup.
func (c *Checker) Run(ctx context.Context) {
	c.check()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check()
		}
	}
}

func (c *Checker) query() (*ntp.Response, error) {
	if c.QueryFunc != nil {
		return c.QueryFunc(c.pool)
	}
	return ntp.Query(c.pool)
}

func (c *Checker) check() {
	resp, err := c.query()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if err != nil {
		c.status = Status{Error: err.Error(), Phase: PhaseError, CheckedAt: now}
		return
	}

	phase := PhaseUnhealthyOffset
	if resp.ClockOffset.Abs() < c.threshold {
		phase = PhaseHealthy
	}
	c.status = Status{Offset: resp.ClockOffset, Phase: phase, CheckedAt: now}
}

// Status returns the most recent measurement.
func (c *Checker) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
