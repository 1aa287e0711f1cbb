package presale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

func TestStakeAndClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pool := f.livePool(t, 10_000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 1000)

	trade, err := f.engine.Stake(ctx, buyer, token, model.Tier3Months, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), trade.TokenUnits)
	require.Equal(t, model.Tier3Months, trade.Tier)

	after := f.pool(t)
	require.Equal(t, uint64(9000), after.TokenAmount)
	require.Equal(t, uint64(1000), after.QuoteAmount)
	require.Equal(t, uint64(1000), after.StakedAmount)
	require.Equal(t, uint64(1050), after.PayoutsOwed)
	require.Equal(t, uint64(0), f.balance(t, model.AssetToken, buyer))
	require.Equal(t, uint64(10_000), f.balance(t, model.AssetToken, pool.EscrowToken))

	pos, err := f.engine.Position(ctx, buyer)
	require.NoError(t, err)
	require.Equal(t, model.TierLock{LockedAmount: 1000, LockStartedAt: startTime, Active: true}, pos.Lock(model.Tier3Months))

	f.clock.Advance(model.Tier3Months.Duration() - 1)
	_, err = f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.ErrorIs(t, err, ErrNotStaking)

	f.clock.Advance(1)
	claim, err := f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.NoError(t, err)
	require.Equal(t, model.Claim{
		Participant: buyer,
		Tier:        model.Tier3Months,
		Principal:   1000,
		Payout:      1050,
		Timestamp:   startTime + model.Tier3Months.Duration(),
	}, claim)

	require.Equal(t, uint64(1050), f.balance(t, model.AssetToken, buyer))
	require.Equal(t, uint64(8950), f.balance(t, model.AssetToken, pool.EscrowToken))
	final := f.pool(t)
	require.Equal(t, uint64(8950), final.TokenAmount)
	require.Equal(t, uint64(0), final.StakedAmount)
	require.Equal(t, uint64(0), final.PayoutsOwed)

	pos, err = f.engine.Position(ctx, buyer)
	require.NoError(t, err)
	require.Equal(t, model.TierLock{}, pos.Lock(model.Tier3Months))

	_, err = f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.ErrorIs(t, err, ErrNotStaking)
}

func TestStakeTwiceInSameTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 10_000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 1000)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier6Months, 100)
	require.NoError(t, err)
	_, err = f.engine.Stake(ctx, buyer, token, model.Tier6Months, 100)
	require.ErrorIs(t, err, ErrAlreadyStaking)

	// other tiers are independent
	_, err = f.engine.Stake(ctx, buyer, token, model.Tier12Months, 200)
	require.NoError(t, err)

	pool := f.pool(t)
	require.Equal(t, uint64(300), pool.StakedAmount)
	require.Equal(t, uint64(110+240), pool.PayoutsOwed)
	require.Equal(t, uint64(700), f.balance(t, model.AssetQuote, buyer))
}

func TestStakeAfterClaimReopensTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 10_000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 1000)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier9Months, 100)
	require.NoError(t, err)
	f.clock.Advance(model.Tier9Months.Duration() + 3600)
	claim, err := f.engine.Claim(ctx, buyer, model.Tier9Months)
	require.NoError(t, err)
	require.Equal(t, uint64(115), claim.Payout)

	_, err = f.engine.Stake(ctx, buyer, token, model.Tier9Months, 100)
	require.NoError(t, err)
}

func TestStakeInvalidTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 10_000, 1, 0)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier(4), 100)
	require.ErrorIs(t, err, ErrInvalidTier)
	_, err = f.engine.Claim(ctx, buyer, model.Tier(0))
	require.ErrorIs(t, err, ErrInvalidTier)
}

func TestStakePublicSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 1000, 100, 0)
	require.NoError(t, f.engine.SetSaleTypePublic(ctx, owner))
	require.NoError(t, f.engine.SetRate(ctx, owner, 10))
	f.fund(t, model.AssetQuote, buyer, 1500)

	trade, err := f.engine.Stake(ctx, buyer, token, model.Tier12Months, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(10), trade.TokenUnits)
	require.Equal(t, uint64(1500), trade.QuoteUnits)
	require.Equal(t, uint64(150), f.pool(t).TokenPrice)
	require.Equal(t, uint64(12), f.pool(t).PayoutsOwed)
}

func TestStakeRejectedLeavesNoPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pool := f.livePool(t, 100, 1, 0)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier3Months, 100)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	_, err = f.engine.Stake(ctx, buyer, token, model.Tier3Months, 50)
	require.Error(t, err)

	require.Equal(t, pool, f.pool(t))
	err = f.store.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Position(ctx, buyer)
		return err
	})
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestClaimWithoutStake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 100, 1, 0)

	_, err := f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.ErrorIs(t, err, ErrNotStaking)
}

func TestClaimEmptyActiveLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.livePool(t, 100, 1, 0)

	pos := model.NewStakePosition(buyer).WithLock(model.Tier3Months, model.TierLock{LockStartedAt: startTime, Active: true})
	err := f.store.Update(ctx, func(tx ledger.Tx) error {
		return tx.CreatePosition(ctx, pos)
	})
	require.NoError(t, err)

	f.clock.Advance(model.Tier3Months.Duration())
	_, err = f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimChecksEscrowBeforePayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pool := f.livePool(t, 1000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 1000)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier3Months, 900)
	require.NoError(t, err)
	require.NoError(t, f.engine.WithdrawToken(ctx, owner, 100))

	// 945 owed, 900 left in escrow
	f.clock.Advance(model.Tier3Months.Duration())
	_, err = f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	pos, err := f.engine.Position(ctx, buyer)
	require.NoError(t, err)
	require.True(t, pos.Lock(model.Tier3Months).Active)
	require.Equal(t, uint64(900), f.balance(t, model.AssetToken, pool.EscrowToken))

	f.fund(t, model.AssetToken, owner, 45)
	require.NoError(t, f.engine.DepositToken(ctx, owner, 45))
	claim, err := f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.NoError(t, err)
	require.Equal(t, uint64(945), claim.Payout)
}

func TestClaimedYieldLeavesInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pool := f.livePool(t, 10_000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 20_000)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier3Months, 1000)
	require.NoError(t, err)
	f.clock.Advance(model.Tier3Months.Duration())
	_, err = f.engine.Claim(ctx, buyer, model.Tier3Months)
	require.NoError(t, err)

	after := f.pool(t)
	require.Equal(t, uint64(8950), after.TokenAmount)
	require.Equal(t, after.TokenAmount, f.balance(t, model.AssetToken, pool.EscrowToken))

	_, err = f.engine.Buy(ctx, buyer, token, 8960)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	_, err = f.engine.Stake(ctx, buyer, token, model.Tier6Months, 8990)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	require.Equal(t, after, f.pool(t))

	s, err := f.engine.Solvency(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.Shortfall)
}

func TestPurchaseRequiresEscrowBacking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pool := f.livePool(t, 1000, 1, 0)
	f.fund(t, model.AssetQuote, buyer, 1000)

	_, err := f.engine.Stake(ctx, buyer, token, model.Tier3Months, 400)
	require.NoError(t, err)

	// escrow loses tokens outside the ledger's operations
	err = f.store.Update(ctx, func(tx ledger.Tx) error {
		return tx.SetBalance(ctx, model.AssetToken, pool.EscrowToken, 700)
	})
	require.NoError(t, err)

	// 400 locked leaves 300 deliverable
	_, err = f.engine.Buy(ctx, buyer, token, 301)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	_, err = f.engine.Stake(ctx, buyer, token, model.Tier6Months, 301)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	require.ErrorIs(t, f.engine.WithdrawToken(ctx, owner, 301), ErrInsufficientBalance)

	_, err = f.engine.Buy(ctx, buyer, token, 300)
	require.NoError(t, err)
	require.Equal(t, uint64(400), f.balance(t, model.AssetToken, pool.EscrowToken))
}
