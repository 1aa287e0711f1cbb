// Package custody keeps quote and token balances in the ledger itself, so
// transfers commit or roll back with the unit of work that issued them.
package custody

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

var (
	// ErrInsufficientFunds is returned when the source account cannot cover a transfer.
	ErrInsufficientFunds = errors.New("custody: insufficient funds")
	// ErrInvalidTransfer is returned for malformed transfers.
	ErrInvalidTransfer = errors.New("custody: invalid transfer")
)

// Book moves balances inside one ledger unit of work.
type Book struct {
	tx ledger.Tx
}

func NewBook(tx ledger.Tx) *Book {
	return &Book{tx: tx}
}

// Transfer debits From and credits To. Zero amounts and self-transfers are no-ops.
func (b *Book) Transfer(ctx context.Context, t model.Transfer) error {
	if !t.Asset.Valid() {
		return fmt.Errorf("%w: unknown asset %q", ErrInvalidTransfer, t.Asset)
	}
	if t.Amount == 0 || t.From == t.To {
		return nil
	}

	fromBal, err := b.tx.Balance(ctx, t.Asset, t.From)
	if err != nil {
		return err
	}
	if fromBal < t.Amount {
		return fmt.Errorf("%w: %s %s has %d, needs %d", ErrInsufficientFunds, t.Asset, t.From.Hex(), fromBal, t.Amount)
	}
	toBal, err := b.tx.Balance(ctx, t.Asset, t.To)
	if err != nil {
		return err
	}
	if toBal > math.MaxUint64-t.Amount {
		return fmt.Errorf("%w: %s balance of %s overflows", ErrInvalidTransfer, t.Asset, t.To.Hex())
	}

	if err := b.tx.SetBalance(ctx, t.Asset, t.From, fromBal-t.Amount); err != nil {
		return err
	}
	return b.tx.SetBalance(ctx, t.Asset, t.To, toBal+t.Amount)
}

// Balance returns the balance of account.
func (b *Book) Balance(ctx context.Context, asset model.Asset, account common.Address) (uint64, error) {
	return b.tx.Balance(ctx, asset, account)
}

// Credit adds amount to account out of thin air. It funds wallets for local
// ledgers where no external custody exists.
func (b *Book) Credit(ctx context.Context, asset model.Asset, account common.Address, amount uint64) error {
	if !asset.Valid() {
		return fmt.Errorf("%w: unknown asset %q", ErrInvalidTransfer, asset)
	}
	bal, err := b.tx.Balance(ctx, asset, account)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s balance of %s overflows", ErrInvalidTransfer, asset, account.Hex())
	}
	return b.tx.SetBalance(ctx, asset, account, bal+amount)
}
