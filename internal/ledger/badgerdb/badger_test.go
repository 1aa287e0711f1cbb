package badgerdb

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

var owner = common.HexToAddress("0x1111111111111111111111111111111111111111")

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	pos := model.NewStakePosition(owner).WithLock(model.Tier9Months, model.TierLock{
		LockedAmount:  42,
		LockStartedAt: 1700000000,
		Active:        true,
	})
	require.NoError(t, store.Update(ctx, func(tx ledger.Tx) error {
		if err := tx.CreatePool(ctx, model.Pool{Owner: owner, TokenPrice: 100, SaleType: model.SalePrivate}); err != nil {
			return err
		}
		if err := tx.CreatePosition(ctx, pos); err != nil {
			return err
		}
		return tx.SetBalance(ctx, model.AssetQuote, owner, 900)
	}))

	require.NoError(t, store.View(ctx, func(tx ledger.Tx) error {
		pool, err := tx.Pool(ctx)
		require.NoError(t, err)
		require.Equal(t, owner, pool.Owner)
		require.Equal(t, uint64(100), pool.TokenPrice)

		stored, err := tx.Position(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, pos, stored)

		bal, err := tx.Balance(ctx, model.AssetQuote, owner)
		require.NoError(t, err)
		require.Equal(t, uint64(900), bal)
		return nil
	}))
}

func TestFailedUpdateDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx ledger.Tx) error {
		if err := tx.CreatePool(ctx, model.Pool{Owner: owner}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Pool(ctx)
		require.ErrorIs(t, err, ledger.ErrNotFound)
		return nil
	}))
}

func TestCreateAndPutSemantics(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Update(ctx, func(tx ledger.Tx) error {
		require.ErrorIs(t, tx.PutPool(ctx, model.Pool{}), ledger.ErrNotFound)
		require.NoError(t, tx.CreatePool(ctx, model.Pool{Owner: owner}))
		require.ErrorIs(t, tx.CreatePool(ctx, model.Pool{Owner: owner}), ledger.ErrExists)
		require.ErrorIs(t, tx.PutPosition(ctx, model.NewStakePosition(owner)), ledger.ErrNotFound)
		return nil
	}))
}

func TestZeroBalanceIsDeleted(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Update(ctx, func(tx ledger.Tx) error {
		require.NoError(t, tx.SetBalance(ctx, model.AssetToken, owner, 5))
		return tx.SetBalance(ctx, model.AssetToken, owner, 0)
	}))
	require.NoError(t, store.View(ctx, func(tx ledger.Tx) error {
		bal, err := tx.Balance(ctx, model.AssetToken, owner)
		require.NoError(t, err)
		require.Zero(t, bal)
		return nil
	}))
}

func TestConflictingUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Update(ctx, func(tx ledger.Tx) error {
		return tx.CreatePool(ctx, model.Pool{Owner: owner, TokenPrice: 100})
	}))

	err := store.Update(ctx, func(tx ledger.Tx) error {
		pool, err := tx.Pool(ctx)
		if err != nil {
			return err
		}
		if err := tx.CreatePosition(ctx, model.NewStakePosition(owner)); err != nil {
			return err
		}

		// another writer commits the pool first
		require.NoError(t, store.Update(ctx, func(other ledger.Tx) error {
			p, err := other.Pool(ctx)
			if err != nil {
				return err
			}
			p.TokenPrice = 200
			return other.PutPool(ctx, p)
		}))

		pool.TokenPrice = 300
		return tx.PutPool(ctx, pool)
	})
	require.ErrorIs(t, err, badger.ErrConflict)

	require.NoError(t, store.View(ctx, func(tx ledger.Tx) error {
		pool, err := tx.Pool(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(200), pool.TokenPrice)

		_, err = tx.Position(ctx, owner)
		require.ErrorIs(t, err, ledger.ErrNotFound)
		return nil
	}))
}
