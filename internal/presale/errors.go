package presale

import (
	"errors"

	"presaleLedger/internal/custody"
	"presaleLedger/internal/pricing"
)

var (
	// ErrUnauthorized is returned when the caller is not the pool owner.
	ErrUnauthorized = errors.New("presale: caller is not the pool owner")
	// ErrNotLive is returned when trading is disabled.
	ErrNotLive = errors.New("presale: sale is not live")
	// ErrWrongSaleMode is returned for operations invalid in the current sale type.
	ErrWrongSaleMode = errors.New("presale: operation not allowed in current sale type")
	// ErrInvalidTransition is returned for an illegal sale type change.
	ErrInvalidTransition = errors.New("presale: invalid sale type transition")
	// ErrTokenMismatch is returned when a trade names a token other than the pool's.
	ErrTokenMismatch = errors.New("presale: token does not match pool")
	// ErrInsufficientInventory is returned when a purchase would exhaust the pool.
	ErrInsufficientInventory = errors.New("presale: insufficient token inventory")
	// ErrInsufficientBalance is returned when a withdrawal or payout exceeds what is held.
	ErrInsufficientBalance = errors.New("presale: insufficient balance")
	// ErrInvalidTier is returned for an unsupported staking period.
	ErrInvalidTier = errors.New("presale: invalid staking tier")
	// ErrAlreadyStaking is returned when the tier already holds a lock.
	ErrAlreadyStaking = errors.New("presale: already staking in this tier")
	// ErrNotStaking is returned when the tier holds no matured lock.
	ErrNotStaking = errors.New("presale: no matured stake in this tier")
	// ErrAlreadyClaimed is returned when an active lock has nothing left to pay.
	ErrAlreadyClaimed = errors.New("presale: stake already claimed")
	// ErrArithmeticOverflow is returned when scaled arithmetic does not fit.
	ErrArithmeticOverflow = pricing.ErrArithmeticOverflow

	// ErrNotInitialized is returned before the pool exists.
	ErrNotInitialized = errors.New("presale: pool not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("presale: pool already initialized")
	// ErrInvalidAmount is returned for zero amounts, zero prices and purchases
	// that would yield no tokens.
	ErrInvalidAmount = errors.New("presale: invalid amount")
)

var resultLabels = []struct {
	err   error
	label string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrNotLive, "not_live"},
	{ErrWrongSaleMode, "wrong_sale_mode"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrTokenMismatch, "token_mismatch"},
	{ErrInsufficientInventory, "insufficient_inventory"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrInvalidTier, "invalid_tier"},
	{ErrAlreadyStaking, "already_staking"},
	{ErrNotStaking, "not_staking"},
	{ErrAlreadyClaimed, "already_claimed"},
	{ErrArithmeticOverflow, "arithmetic_overflow"},
	{ErrNotInitialized, "not_initialized"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrInvalidAmount, "invalid_amount"},
	{custody.ErrInsufficientFunds, "custody_insufficient_funds"},
	{custody.ErrInvalidTransfer, "custody_invalid_transfer"},
}

// ResultLabel classifies err for metrics; nil is "ok".
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, rl := range resultLabels {
		if errors.Is(err, rl.err) {
			return rl.label
		}
	}
	return "error"
}
