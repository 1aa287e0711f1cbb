package presale

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

// Pool returns the current pool.
func (e *Engine) Pool(ctx context.Context) (model.Pool, error) {
	var pool model.Pool
	err := e.store.View(ctx, func(tx ledger.Tx) error {
		u := &unit{tx: tx}
		if err := u.loadPool(ctx); err != nil {
			return err
		}
		pool = u.pool
		return nil
	})
	return pool, err
}

// Position returns owner's stake position. An owner who never staked gets an
// idle position.
func (e *Engine) Position(ctx context.Context, owner common.Address) (model.StakePosition, error) {
	var pos model.StakePosition
	err := e.store.View(ctx, func(tx ledger.Tx) error {
		u := &unit{tx: tx}
		p, _, err := u.loadPosition(ctx, owner)
		if err != nil {
			return err
		}
		pos = p
		return nil
	})
	return pos, err
}

// Solvency compares the escrow balances with the unsold inventory, the
// payouts promised to stakers and the quote collected.
func (e *Engine) Solvency(ctx context.Context) (model.Solvency, error) {
	var s model.Solvency
	err := e.store.View(ctx, func(tx ledger.Tx) error {
		u := &unit{tx: tx, custody: e.custody(tx)}
		if err := u.loadPool(ctx); err != nil {
			return err
		}
		tokens, err := u.custody.Balance(ctx, model.AssetToken, u.pool.EscrowToken)
		if err != nil {
			return fmt.Errorf("token escrow balance: %w", err)
		}
		quote, err := u.custody.Balance(ctx, model.AssetQuote, u.pool.EscrowQuote)
		if err != nil {
			return fmt.Errorf("quote escrow balance: %w", err)
		}

		s = model.Solvency{
			EscrowTokens: tokens,
			Inventory:    u.pool.TokenAmount,
			StakedAmount: u.pool.StakedAmount,
			PayoutsOwed:  u.pool.PayoutsOwed,
			EscrowQuote:  quote,
			QuoteAmount:  u.pool.QuoteAmount,
		}
		required, err := addChecked(u.pool.TokenAmount, u.pool.PayoutsOwed)
		if errors.Is(err, ErrArithmeticOverflow) {
			s.Shortfall = ^uint64(0)
			return nil
		}
		s.Shortfall = subFloor(required, tokens)
		s.Solvent = s.Shortfall == 0 && quote >= u.pool.QuoteAmount
		return nil
	})
	return s, err
}
