package custody

import (
	"context"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/ledger/memory"
	"presaleLedger/internal/model"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func balances(t *testing.T, store ledger.Store, asset model.Asset) (uint64, uint64) {
	t.Helper()
	var a, b uint64
	require.NoError(t, store.View(context.Background(), func(tx ledger.Tx) error {
		var err error
		if a, err = tx.Balance(context.Background(), asset, alice); err != nil {
			return err
		}
		b, err = tx.Balance(context.Background(), asset, bob)
		return err
	}))
	return a, b
}

func TestTransferMovesBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Update(ctx, func(tx ledger.Tx) error {
		book := NewBook(tx)
		if err := book.Credit(ctx, model.AssetQuote, alice, 100); err != nil {
			return err
		}
		return book.Transfer(ctx, model.Transfer{Asset: model.AssetQuote, From: alice, To: bob, Amount: 40})
	}))

	a, b := balances(t, store, model.AssetQuote)
	require.Equal(t, uint64(60), a)
	require.Equal(t, uint64(40), b)
}

func TestTransferInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.Update(ctx, func(tx ledger.Tx) error {
		book := NewBook(tx)
		if err := book.Credit(ctx, model.AssetToken, alice, 10); err != nil {
			return err
		}
		return book.Transfer(ctx, model.Transfer{Asset: model.AssetToken, From: alice, To: bob, Amount: 11})
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	a, b := balances(t, store, model.AssetToken)
	require.Zero(t, a)
	require.Zero(t, b)
}

func TestTransferRejectsUnknownAssetAndOverflow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.Update(ctx, func(tx ledger.Tx) error {
		return NewBook(tx).Transfer(ctx, model.Transfer{Asset: "btc", From: alice, To: bob, Amount: 1})
	})
	require.ErrorIs(t, err, ErrInvalidTransfer)

	err = store.Update(ctx, func(tx ledger.Tx) error {
		book := NewBook(tx)
		require.NoError(t, book.Credit(ctx, model.AssetQuote, alice, 1))
		require.NoError(t, book.Credit(ctx, model.AssetQuote, bob, math.MaxUint64))
		return book.Transfer(ctx, model.Transfer{Asset: model.AssetQuote, From: alice, To: bob, Amount: 1})
	})
	require.ErrorIs(t, err, ErrInvalidTransfer)
}

func TestEscrowAddressesAreStable(t *testing.T) {
	token := common.HexToAddress("0x9999999999999999999999999999999999999999")
	other := common.HexToAddress("0x8888888888888888888888888888888888888888")

	q1, t1 := EscrowAddresses(token)
	q2, t2 := EscrowAddresses(token)
	q3, t3 := EscrowAddresses(other)

	require.Equal(t, q1, q2)
	require.Equal(t, t1, t2)
	require.Equal(t, q1, q3)
	require.NotEqual(t, t1, t3)
	require.NotEqual(t, q1, t1)
	require.NotEqual(t, common.Address{}, t1)
}
