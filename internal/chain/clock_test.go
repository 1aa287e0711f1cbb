package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

type scriptedHeaders struct {
	times []uint64
	fails int
	calls int
}

func (s *scriptedHeaders) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	s.calls++
	if number != nil {
		return nil, errors.New("expected latest header request")
	}
	if s.fails > 0 {
		s.fails--
		return nil, errors.New("rpc unavailable")
	}
	ts := s.times[0]
	if len(s.times) > 1 {
		s.times = s.times[1:]
	}
	return &types.Header{Time: ts}, nil
}

func TestHeadClockRetriesAndNeverGoesBack(t *testing.T) {
	headers := &scriptedHeaders{times: []uint64{1000, 990, 1010}, fails: 2}
	clock := NewHeadClock(headers, 3, time.Millisecond)
	ctx := context.Background()

	first, err := clock.Now(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 1000 || headers.calls != 3 {
		t.Fatalf("got ts=%d calls=%d", first, headers.calls)
	}

	second, err := clock.Now(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 1000 {
		t.Fatalf("clock went backwards: %d", second)
	}

	third, err := clock.Now(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != 1010 {
		t.Fatalf("expected 1010, got %d", third)
	}
}

func TestHeadClockGivesUp(t *testing.T) {
	clock := NewHeadClock(&scriptedHeaders{times: []uint64{1}, fails: 5}, 1, time.Millisecond)
	if _, err := clock.Now(context.Background()); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	base := time.Unix(2000, 0)
	steps := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	clock := &SystemClock{now: func() time.Time {
		next := steps[0]
		steps = steps[1:]
		return next
	}}

	want := []int64{2000, 2000, 2001}
	for i, w := range want {
		got, err := clock.Now(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != w {
			t.Fatalf("step %d: got %d want %d", i, got, w)
		}
	}
}

func TestFixedClockAdvance(t *testing.T) {
	clock := NewFixedClock(10)
	clock.Advance(5)
	got, _ := clock.Now(context.Background())
	if got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}
