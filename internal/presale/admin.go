package presale

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/custody"
	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
	"presaleLedger/internal/pricing"
)

// InitParams describes the pool created by Initialize.
type InitParams struct {
	Token         common.Address
	TokenDecimals uint8
	TokenAmount   uint64
	TokenPrice    uint64
}

// Initialize creates the pool with caller as owner and moves TokenAmount
// tokens from the caller into escrow. The sale starts private and disabled.
func (e *Engine) Initialize(ctx context.Context, caller common.Address, params InitParams) error {
	return e.execute(ctx, model.OpInitialize, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if params.TokenPrice == 0 {
			return model.LedgerEvent{}, fmt.Errorf("%w: token price must be positive", ErrInvalidAmount)
		}
		if params.TokenDecimals > pricing.MaxDecimals {
			return model.LedgerEvent{}, fmt.Errorf("%w: %d token decimals", ErrInvalidAmount, params.TokenDecimals)
		}

		escrowQuote, escrowToken := custody.EscrowAddresses(params.Token)
		u.pool = model.Pool{
			Owner:         caller,
			EscrowQuote:   escrowQuote,
			EscrowToken:   escrowToken,
			Token:         params.Token,
			TokenDecimals: params.TokenDecimals,
			TokenAmount:   params.TokenAmount,
			TokenPrice:    params.TokenPrice,
			Status:        false,
			SaleType:      model.SalePrivate,
			CreatedAt:     u.now,
			UpdatedAt:     u.now,
		}
		if err := u.tx.CreatePool(ctx, u.pool); err != nil {
			if errors.Is(err, ledger.ErrExists) {
				return model.LedgerEvent{}, ErrAlreadyInitialized
			}
			return model.LedgerEvent{}, fmt.Errorf("create pool: %w", err)
		}
		if err := u.transfer(ctx, model.AssetToken, caller, escrowToken, params.TokenAmount); err != nil {
			return model.LedgerEvent{}, err
		}

		return model.LedgerEvent{Amount: params.TokenAmount, TokenUnits: params.TokenAmount, Price: params.TokenPrice}, nil
	})
}

// ToggleStatus enables or disables trading.
func (e *Engine) ToggleStatus(ctx context.Context, caller common.Address) error {
	return e.execute(ctx, model.OpToggleStatus, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.Status = !u.pool.Status
		return model.LedgerEvent{}, u.savePool(ctx)
	})
}

// SetSaleTypePublic switches the pool to the dynamically priced sale. The
// switch is one-way.
func (e *Engine) SetSaleTypePublic(ctx context.Context, caller common.Address) error {
	return e.execute(ctx, model.OpSetPublic, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if u.pool.IsPublic() {
			return model.LedgerEvent{}, ErrInvalidTransition
		}
		u.pool.SaleType = model.SalePublic
		return model.LedgerEvent{Price: u.pool.TokenPrice}, u.savePool(ctx)
	})
}

// SetTokenPrice sets the fixed private-sale price.
func (e *Engine) SetTokenPrice(ctx context.Context, caller common.Address, newPrice uint64) error {
	return e.execute(ctx, model.OpSetTokenPrice, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if u.pool.IsPublic() {
			return model.LedgerEvent{}, ErrWrongSaleMode
		}
		if newPrice == 0 {
			return model.LedgerEvent{}, fmt.Errorf("%w: token price must be positive", ErrInvalidAmount)
		}
		u.pool.TokenPrice = newPrice
		return model.LedgerEvent{Price: newPrice}, u.savePool(ctx)
	})
}

// SetRate sets the public-sale price growth coefficient.
func (e *Engine) SetRate(ctx context.Context, caller common.Address, newRate uint64) error {
	return e.execute(ctx, model.OpSetRate, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if !u.pool.IsPublic() {
			return model.LedgerEvent{}, ErrWrongSaleMode
		}
		u.pool.Rate = newRate
		return model.LedgerEvent{Amount: newRate}, u.savePool(ctx)
	})
}

// SetOwner hands administration of the pool to newOwner.
func (e *Engine) SetOwner(ctx context.Context, caller, newOwner common.Address) error {
	return e.execute(ctx, model.OpSetOwner, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.Owner = newOwner
		return model.LedgerEvent{Target: &newOwner}, u.savePool(ctx)
	})
}

// DepositToken adds amount tokens from the owner's wallet to the inventory.
func (e *Engine) DepositToken(ctx context.Context, caller common.Address, amount uint64) error {
	return e.execute(ctx, model.OpDepositToken, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if amount == 0 {
			return model.LedgerEvent{}, ErrInvalidAmount
		}
		next, err := addChecked(u.pool.TokenAmount, amount)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.TokenAmount = next
		if err := u.savePool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.transfer(ctx, model.AssetToken, caller, u.pool.EscrowToken, amount); err != nil {
			return model.LedgerEvent{}, err
		}
		return model.LedgerEvent{Amount: amount, TokenUnits: amount}, nil
	})
}

// WithdrawToken returns amount unsold tokens to the owner.
func (e *Engine) WithdrawToken(ctx context.Context, caller common.Address, amount uint64) error {
	return e.execute(ctx, model.OpWithdrawToken, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if amount == 0 {
			return model.LedgerEvent{}, ErrInvalidAmount
		}
		if amount > u.pool.TokenAmount {
			return model.LedgerEvent{}, fmt.Errorf("%w: %d tokens requested, %d unsold", ErrInsufficientBalance, amount, u.pool.TokenAmount)
		}
		backed, err := addChecked(amount, u.pool.StakedAmount)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.requireEscrow(ctx, model.AssetToken, u.pool.EscrowToken, backed); err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.TokenAmount -= amount
		if err := u.savePool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.transfer(ctx, model.AssetToken, u.pool.EscrowToken, caller, amount); err != nil {
			return model.LedgerEvent{}, err
		}
		return model.LedgerEvent{Amount: amount, TokenUnits: amount}, nil
	})
}

// WithdrawQuote sends amount of the raised quote currency to the owner.
func (e *Engine) WithdrawQuote(ctx context.Context, caller common.Address, amount uint64) error {
	return e.execute(ctx, model.OpWithdrawQuote, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadOwnedPool(ctx, caller); err != nil {
			return model.LedgerEvent{}, err
		}
		if amount == 0 {
			return model.LedgerEvent{}, ErrInvalidAmount
		}
		if amount > u.pool.QuoteAmount {
			return model.LedgerEvent{}, fmt.Errorf("%w: %d quote requested, %d collected", ErrInsufficientBalance, amount, u.pool.QuoteAmount)
		}
		if err := u.requireEscrow(ctx, model.AssetQuote, u.pool.EscrowQuote, amount); err != nil {
			return model.LedgerEvent{}, err
		}
		u.pool.QuoteAmount -= amount
		if err := u.savePool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.transfer(ctx, model.AssetQuote, u.pool.EscrowQuote, caller, amount); err != nil {
			return model.LedgerEvent{}, err
		}
		return model.LedgerEvent{Amount: amount, QuoteUnits: amount}, nil
	})
}

// requireEscrow fails with ErrInsufficientBalance unless escrow holds amount.
func (u *unit) requireEscrow(ctx context.Context, asset model.Asset, escrow common.Address, amount uint64) error {
	held, err := u.custody.Balance(ctx, asset, escrow)
	if err != nil {
		return fmt.Errorf("escrow balance: %w", err)
	}
	if held < amount {
		return fmt.Errorf("%w: escrow holds %d %s, needs %d", ErrInsufficientBalance, held, asset, amount)
	}
	return nil
}
