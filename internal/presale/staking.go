package presale

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
	"presaleLedger/internal/pricing"
)

// loadPosition returns caller's position and whether it already exists.
func (u *unit) loadPosition(ctx context.Context, owner common.Address) (model.StakePosition, bool, error) {
	pos, err := u.tx.Position(ctx, owner)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return model.NewStakePosition(owner), false, nil
		}
		return model.StakePosition{}, false, fmt.Errorf("load position: %w", err)
	}
	return pos, true, nil
}

func (u *unit) savePosition(ctx context.Context, pos model.StakePosition, exists bool) error {
	var err error
	if exists {
		err = u.tx.PutPosition(ctx, pos)
	} else {
		err = u.tx.CreatePosition(ctx, pos)
	}
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Stake buys tokens exactly as Buy does and locks them in tier instead of
// delivering them. The locked tokens and the promised payout stay in the
// token escrow until Claim.
func (e *Engine) Stake(ctx context.Context, caller, token common.Address, tier model.Tier, amount uint64) (model.Trade, error) {
	var trade model.Trade
	err := e.execute(ctx, model.OpStake, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if !tier.Valid() {
			return model.LedgerEvent{}, fmt.Errorf("%w: %d", ErrInvalidTier, tier)
		}
		if err := u.loadPool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		pos, exists, err := u.loadPosition(ctx, caller)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		if pos.Lock(tier).Active {
			return model.LedgerEvent{}, fmt.Errorf("%w: tier %s", ErrAlreadyStaking, tier)
		}

		p, err := planPurchase(u.pool, token, amount)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		payout, err := pricing.ApplyPercent(p.tokens, tier.Multiplier())
		if err != nil {
			return model.LedgerEvent{}, fmt.Errorf("price payout: %w", err)
		}
		staked, err := addChecked(u.pool.StakedAmount, p.tokens)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		owed, err := addChecked(u.pool.PayoutsOwed, payout)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.requireBacking(ctx, p.tokens); err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.StakedAmount = staked
		u.pool.PayoutsOwed = owed
		if err := u.settle(ctx, caller, p); err != nil {
			return model.LedgerEvent{}, err
		}

		pos = pos.WithLock(tier, model.TierLock{LockedAmount: p.tokens, LockStartedAt: u.now, Active: true})
		if err := u.savePosition(ctx, pos, exists); err != nil {
			return model.LedgerEvent{}, err
		}

		trade = p.trade(caller, u.pool, u.now)
		trade.Tier = tier
		ev := p.event(amount)
		ev.Tier = tier
		return ev, nil
	})
	if err != nil {
		return model.Trade{}, err
	}
	return trade, nil
}

// Claim pays out a matured lock. The lock matures once its full tier
// duration has elapsed, the boundary second included.
func (e *Engine) Claim(ctx context.Context, caller common.Address, tier model.Tier) (model.Claim, error) {
	var claim model.Claim
	err := e.execute(ctx, model.OpClaim, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if !tier.Valid() {
			return model.LedgerEvent{}, fmt.Errorf("%w: %d", ErrInvalidTier, tier)
		}
		if err := u.loadPool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		pos, _, err := u.loadPosition(ctx, caller)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		lock := pos.Lock(tier)
		if !lock.Active {
			return model.LedgerEvent{}, fmt.Errorf("%w: tier %s", ErrNotStaking, tier)
		}
		if u.now-lock.LockStartedAt < tier.Duration() {
			return model.LedgerEvent{}, fmt.Errorf("%w: tier %s matures at %d", ErrNotStaking, tier, lock.LockStartedAt+tier.Duration())
		}
		if lock.LockedAmount == 0 {
			return model.LedgerEvent{}, fmt.Errorf("%w: tier %s", ErrAlreadyClaimed, tier)
		}

		payout, err := pricing.ApplyPercent(lock.LockedAmount, tier.Multiplier())
		if err != nil {
			return model.LedgerEvent{}, fmt.Errorf("price payout: %w", err)
		}
		if err := u.requireEscrow(ctx, model.AssetToken, u.pool.EscrowToken, payout); err != nil {
			return model.LedgerEvent{}, err
		}

		pos = pos.WithLock(tier, model.TierLock{})
		if err := u.savePosition(ctx, pos, true); err != nil {
			return model.LedgerEvent{}, err
		}
		// the yield above the principal comes out of the unsold inventory
		u.pool.TokenAmount = subFloor(u.pool.TokenAmount, payout-lock.LockedAmount)
		u.pool.StakedAmount = subFloor(u.pool.StakedAmount, lock.LockedAmount)
		u.pool.PayoutsOwed = subFloor(u.pool.PayoutsOwed, payout)
		if err := u.savePool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.transfer(ctx, model.AssetToken, u.pool.EscrowToken, caller, payout); err != nil {
			return model.LedgerEvent{}, err
		}

		claim = model.Claim{
			Participant: caller,
			Tier:        tier,
			Principal:   lock.LockedAmount,
			Payout:      payout,
			Timestamp:   u.now,
		}
		return model.LedgerEvent{Amount: lock.LockedAmount, TokenUnits: payout, Tier: tier}, nil
	})
	if err != nil {
		return model.Claim{}, err
	}
	return claim, nil
}
