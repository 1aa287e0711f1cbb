// Package badgerdb implements ledger.Store on an embedded BadgerDB.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

var _ ledger.Store = (*Store)(nil)

// Options configures the badger store.
type Options struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *zap.Logger
}

// Store is a ledger.Store backed by badger transactions. Conflicting
// concurrent updates fail with badger.ErrConflict; they are not retried.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.InMemory && opts.Dir == "" {
		return nil, fmt.Errorf("badger dir is required")
	}

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(&logAdapter{logger: logger.Named("badger").Sugar()})
	bopts = bopts.WithSyncWrites(true)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&tx{txn: txn})
	})
}

func (s *Store) View(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&tx{txn: txn, readOnly: true})
	})
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type tx struct {
	txn      *badger.Txn
	readOnly bool
}

func (t *tx) get(key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func (t *tx) exists(key string) (bool, error) {
	_, err := t.txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get %s: %w", key, err)
	}
}

func (t *tx) set(key string, value []byte) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if err := t.txn.Set([]byte(key), value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (t *tx) putRecord(key string, v interface{}, mustExist bool) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	ok, err := t.exists(key)
	if err != nil {
		return err
	}
	if mustExist && !ok {
		return ledger.ErrNotFound
	}
	if !mustExist && ok {
		return ledger.ErrExists
	}
	data, err := ledger.EncodeRecord(v)
	if err != nil {
		return err
	}
	return t.set(key, data)
}

func (t *tx) Pool(_ context.Context) (model.Pool, error) {
	data, err := t.get(ledger.PoolKey)
	if err != nil {
		return model.Pool{}, err
	}
	var pool model.Pool
	if err := ledger.DecodeRecord(data, &pool); err != nil {
		return model.Pool{}, err
	}
	return pool, nil
}

func (t *tx) CreatePool(_ context.Context, pool model.Pool) error {
	return t.putRecord(ledger.PoolKey, pool, false)
}

func (t *tx) PutPool(_ context.Context, pool model.Pool) error {
	return t.putRecord(ledger.PoolKey, pool, true)
}

func (t *tx) Position(_ context.Context, owner common.Address) (model.StakePosition, error) {
	data, err := t.get(ledger.PositionKey(owner))
	if err != nil {
		return model.StakePosition{}, err
	}
	var pos model.StakePosition
	if err := ledger.DecodeRecord(data, &pos); err != nil {
		return model.StakePosition{}, err
	}
	if pos.Tiers == nil {
		pos.Tiers = make(map[model.Tier]model.TierLock)
	}
	return pos, nil
}

func (t *tx) CreatePosition(_ context.Context, pos model.StakePosition) error {
	return t.putRecord(ledger.PositionKey(pos.Owner), pos, false)
}

func (t *tx) PutPosition(_ context.Context, pos model.StakePosition) error {
	return t.putRecord(ledger.PositionKey(pos.Owner), pos, true)
}

func (t *tx) Balance(_ context.Context, asset model.Asset, account common.Address) (uint64, error) {
	data, err := t.get(ledger.BalanceKey(asset, account))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return ledger.DecodeBalance(data)
}

func (t *tx) SetBalance(_ context.Context, asset model.Asset, account common.Address, amount uint64) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	key := ledger.BalanceKey(asset, account)
	if amount == 0 {
		if err := t.txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}
	return t.set(key, ledger.EncodeBalance(amount))
}

type logAdapter struct {
	logger *zap.SugaredLogger
}

func (l *logAdapter) Errorf(format string, a ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Warningf(format string, a ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Infof(format string, a ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Debugf(format string, a ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
}
