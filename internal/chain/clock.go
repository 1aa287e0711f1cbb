package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

// HeaderSource returns block headers; nil number means latest.
type HeaderSource interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// monotonic never lets a clock go backwards.
type monotonic struct {
	mu   sync.Mutex
	last int64
}

func (m *monotonic) observe(ts int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts > m.last {
		m.last = ts
	}
	return m.last
}

// SystemClock reads the local wall clock.
type SystemClock struct {
	now func() time.Time
	m   monotonic
}

func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns the current unix time in seconds.
func (c *SystemClock) Now(_ context.Context) (int64, error) {
	return c.m.observe(c.now().Unix()), nil
}

// HeadClock reports the timestamp of the latest block.
type HeadClock struct {
	headers    HeaderSource
	maxRetries int
	backoff    time.Duration
	m          monotonic
}

func NewHeadClock(headers HeaderSource, maxRetries int, backoff time.Duration) *HeadClock {
	return &HeadClock{headers: headers, maxRetries: maxRetries, backoff: backoff}
}

// Now returns the latest block timestamp in unix seconds.
func (c *HeadClock) Now(ctx context.Context) (int64, error) {
	if c.headers == nil {
		return 0, fmt.Errorf("chain client is nil")
	}
	var header *types.Header
	err := retryCall(ctx, c.maxRetries, c.backoff, func(ctx context.Context) error {
		var err error
		header, err = c.headers.HeaderByNumber(ctx, nil)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("latest header: %w", err)
	}
	return c.m.observe(int64(header.Time)), nil
}

// FixedClock returns a settable time. It is meant for tests and replay.
type FixedClock struct {
	mu  sync.Mutex
	now int64
}

func NewFixedClock(now int64) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}

// Advance moves the clock forward by seconds.
func (c *FixedClock) Advance(seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}
