// Package memory implements an in-process ledger.Store. Updates are
// serialized and staged on a copy of the state, which replaces the live state
// only when the unit of work succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

var _ ledger.Store = (*Store)(nil)

type balanceKey struct {
	asset   model.Asset
	account common.Address
}

type state struct {
	pool      *model.Pool
	positions map[common.Address]model.StakePosition
	balances  map[balanceKey]uint64
}

func (s *state) clone() *state {
	out := &state{
		positions: make(map[common.Address]model.StakePosition, len(s.positions)),
		balances:  make(map[balanceKey]uint64, len(s.balances)),
	}
	if s.pool != nil {
		pool := *s.pool
		out.pool = &pool
	}
	for k, v := range s.positions {
		out.positions[k] = copyPosition(v)
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	return out
}

// Store keeps the ledger in memory.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func New() *Store {
	return &Store{state: &state{
		positions: make(map[common.Address]model.StakePosition),
		balances:  make(map[balanceKey]uint64),
	}}
}

func (s *Store) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&tx{state: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{state: s.state, readOnly: true})
}

func (s *Store) Close() error {
	return nil
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) Pool(_ context.Context) (model.Pool, error) {
	if t.state.pool == nil {
		return model.Pool{}, ledger.ErrNotFound
	}
	return *t.state.pool, nil
}

func (t *tx) CreatePool(_ context.Context, pool model.Pool) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if t.state.pool != nil {
		return ledger.ErrExists
	}
	t.state.pool = &pool
	return nil
}

func (t *tx) PutPool(_ context.Context, pool model.Pool) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if t.state.pool == nil {
		return ledger.ErrNotFound
	}
	t.state.pool = &pool
	return nil
}

func (t *tx) Position(_ context.Context, owner common.Address) (model.StakePosition, error) {
	pos, ok := t.state.positions[owner]
	if !ok {
		return model.StakePosition{}, ledger.ErrNotFound
	}
	return copyPosition(pos), nil
}

func (t *tx) CreatePosition(_ context.Context, pos model.StakePosition) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if _, ok := t.state.positions[pos.Owner]; ok {
		return ledger.ErrExists
	}
	t.state.positions[pos.Owner] = copyPosition(pos)
	return nil
}

func (t *tx) PutPosition(_ context.Context, pos model.StakePosition) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if _, ok := t.state.positions[pos.Owner]; !ok {
		return ledger.ErrNotFound
	}
	t.state.positions[pos.Owner] = copyPosition(pos)
	return nil
}

func (t *tx) Balance(_ context.Context, asset model.Asset, account common.Address) (uint64, error) {
	return t.state.balances[balanceKey{asset: asset, account: account}], nil
}

func (t *tx) SetBalance(_ context.Context, asset model.Asset, account common.Address, amount uint64) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	key := balanceKey{asset: asset, account: account}
	if amount == 0 {
		delete(t.state.balances, key)
		return nil
	}
	t.state.balances[key] = amount
	return nil
}

func copyPosition(pos model.StakePosition) model.StakePosition {
	tiers := make(map[model.Tier]model.TierLock, len(pos.Tiers))
	for k, v := range pos.Tiers {
		tiers[k] = v
	}
	return model.StakePosition{Owner: pos.Owner, Tiers: tiers}
}
