// Package presale implements the presale ledger: owner-gated pool
// configuration, private and public token sales, and tiered staking.
//
// Every operation runs as one ledger unit of work. Preconditions are checked
// before any record is written, and a failing custody transfer aborts the
// whole unit, so a rejected call leaves no partial state behind.
package presale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"presaleLedger/internal/custody"
	"presaleLedger/internal/journal"
	"presaleLedger/internal/ledger"
	"presaleLedger/internal/metrics"
	"presaleLedger/internal/model"
)

// Custody moves quote currency and tokens between custody accounts.
// Transfer must be all-or-nothing.
type Custody interface {
	Transfer(ctx context.Context, t model.Transfer) error
	Balance(ctx context.Context, asset model.Asset, account common.Address) (uint64, error)
}

// CustodyBinder returns the custody view that participates in tx.
type CustodyBinder func(tx ledger.Tx) Custody

// Clock returns the current unix time in seconds; it never goes backwards.
type Clock interface {
	Now(ctx context.Context) (int64, error)
}

// Config wires an Engine to its collaborators.
type Config struct {
	Store   ledger.Store
	Clock   Clock
	Custody CustodyBinder
	Journal journal.Sink
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Engine executes presale operations.
type Engine struct {
	store   ledger.Store
	clock   Clock
	custody CustodyBinder
	journal journal.Sink
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("ledger store is nil")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock is nil")
	}
	if cfg.Custody == nil {
		cfg.Custody = func(tx ledger.Tx) Custody { return custody.NewBook(tx) }
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{
		store:   cfg.Store,
		clock:   cfg.Clock,
		custody: cfg.Custody,
		journal: cfg.Journal,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// unit is the state of one operation inside its ledger transaction.
type unit struct {
	tx      ledger.Tx
	custody Custody
	now     int64
	pool    model.Pool
}

func (u *unit) loadPool(ctx context.Context) error {
	pool, err := u.tx.Pool(ctx)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return ErrNotInitialized
		}
		return fmt.Errorf("load pool: %w", err)
	}
	u.pool = pool
	return nil
}

func (u *unit) loadOwnedPool(ctx context.Context, caller common.Address) error {
	if err := u.loadPool(ctx); err != nil {
		return err
	}
	if caller != u.pool.Owner {
		return ErrUnauthorized
	}
	return nil
}

func (u *unit) savePool(ctx context.Context) error {
	u.pool.UpdatedAt = u.now
	if err := u.tx.PutPool(ctx, u.pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}

func (u *unit) transfer(ctx context.Context, asset model.Asset, from, to common.Address, amount uint64) error {
	t := model.Transfer{Asset: asset, From: from, To: to, Amount: amount}
	if err := u.custody.Transfer(ctx, t); err != nil {
		return fmt.Errorf("transfer %s: %w", asset, err)
	}
	return nil
}

// execute runs fn in one unit of work and, once it commits, records the
// returned event. The clock is read once, before the unit starts.
func (e *Engine) execute(ctx context.Context, op string, caller common.Address, fn func(ctx context.Context, u *unit) (model.LedgerEvent, error)) error {
	now, err := e.clock.Now(ctx)
	if err != nil {
		e.metrics.ObserveOperation(op, "clock_error")
		return fmt.Errorf("read clock: %w", err)
	}

	var (
		event model.LedgerEvent
		pool  model.Pool
	)
	err = e.store.Update(ctx, func(tx ledger.Tx) error {
		u := &unit{tx: tx, custody: e.custody(tx), now: now}
		ev, err := fn(ctx, u)
		if err != nil {
			return err
		}
		event = ev
		pool = u.pool
		return nil
	})
	e.metrics.ObserveOperation(op, ResultLabel(err))
	if err != nil {
		e.logger.Debug("operation rejected",
			zap.String("op", op),
			zap.String("caller", caller.Hex()),
			zap.Error(err),
		)
		return err
	}

	event.ID = uuid.NewString()
	event.Op = op
	event.Caller = caller
	event.Timestamp = now
	event.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)

	e.metrics.ObservePool(pool)
	e.metrics.ObserveTokens(op, event.TokenUnits)

	e.logger.Info("operation committed",
		zap.String("op", op),
		zap.String("id", event.ID),
		zap.String("caller", caller.Hex()),
		zap.Uint64("amount", event.Amount),
		zap.Uint64("token_units", event.TokenUnits),
		zap.Uint64("quote_units", event.QuoteUnits),
		zap.Uint64("price", event.Price),
		zap.Uint64("token_amount", pool.TokenAmount),
		zap.Uint64("quote_amount", pool.QuoteAmount),
	)

	if err := e.journal.PutEvents([]model.LedgerEvent{event}); err != nil {
		e.logger.Error("journal write failed", zap.String("op", op), zap.String("id", event.ID), zap.Error(err))
	}
	return nil
}

func addChecked(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func subFloor(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
