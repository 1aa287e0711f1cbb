// Package ledger defines the durable record store the presale engine runs
// against. A Store executes units of work; everything read and written through
// one Tx commits together or not at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrExists is returned by Create* when the record already exists.
	ErrExists = errors.New("ledger: record already exists")
)

// Store runs units of work against the ledger.
type Store interface {
	// Update runs fn in a read-write unit of work. Writes are discarded if fn
	// returns an error.
	Update(ctx context.Context, fn func(Tx) error) error
	// View runs fn in a read-only unit of work.
	View(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Tx is the record-level view of one unit of work.
type Tx interface {
	Pool(ctx context.Context) (model.Pool, error)
	CreatePool(ctx context.Context, pool model.Pool) error
	PutPool(ctx context.Context, pool model.Pool) error

	Position(ctx context.Context, owner common.Address) (model.StakePosition, error)
	CreatePosition(ctx context.Context, pos model.StakePosition) error
	PutPosition(ctx context.Context, pos model.StakePosition) error

	Balance(ctx context.Context, asset model.Asset, account common.Address) (uint64, error)
	SetBalance(ctx context.Context, asset model.Asset, account common.Address, amount uint64) error
}

// ErrReadOnly is returned by write methods inside View.
var ErrReadOnly = errors.New("ledger: read-only unit of work")

// PoolKey is the key of the singleton pool record.
const PoolKey = "pool"

// PositionKey returns the key of owner's stake position.
func PositionKey(owner common.Address) string {
	return "position/" + strings.ToLower(owner.Hex())
}

// BalanceKey returns the key of a custody balance.
func BalanceKey(asset model.Asset, account common.Address) string {
	return fmt.Sprintf("balance/%s/%s", asset, strings.ToLower(account.Hex()))
}
