package presale

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/model"
	"presaleLedger/internal/pricing"
)

// purchase is a priced, validated buy that has not touched the ledger yet.
type purchase struct {
	tokens      uint64
	quote       uint64
	priceBefore uint64
	priceAfter  uint64
}

// planPurchase validates a buy of amount against pool and prices it. amount
// is quote units in the private sale and token units in the public sale.
func planPurchase(pool model.Pool, token common.Address, amount uint64) (purchase, error) {
	if !pool.Status {
		return purchase{}, ErrNotLive
	}
	if token != pool.Token {
		return purchase{}, fmt.Errorf("%w: pool sells %s, got %s", ErrTokenMismatch, pool.Token.Hex(), token.Hex())
	}
	if amount == 0 {
		return purchase{}, ErrInvalidAmount
	}

	p := purchase{priceBefore: pool.TokenPrice, priceAfter: pool.TokenPrice}
	if !pool.IsPublic() {
		tokens, err := pricing.TokensForQuote(pool.TokenPrice, amount, pool.TokenDecimals)
		if err != nil {
			return purchase{}, fmt.Errorf("price private buy: %w", err)
		}
		if tokens == 0 {
			return purchase{}, fmt.Errorf("%w: %d quote buys no tokens at price %d", ErrInvalidAmount, amount, pool.TokenPrice)
		}
		if tokens >= pool.TokenAmount {
			return purchase{}, fmt.Errorf("%w: %d tokens requested, %d unsold", ErrInsufficientInventory, tokens, pool.TokenAmount)
		}
		p.tokens = tokens
		p.quote = amount
		return p, nil
	}

	if amount >= pool.TokenAmount {
		return purchase{}, fmt.Errorf("%w: %d tokens requested, %d unsold", ErrInsufficientInventory, amount, pool.TokenAmount)
	}
	next, err := pricing.PublicPriceAfterBuy(pool.TokenPrice, pool.Rate, amount, pool.TokenDecimals)
	if err != nil {
		return purchase{}, fmt.Errorf("price public buy: %w", err)
	}
	quote, err := pricing.QuoteForTokens(next, amount, pool.TokenDecimals)
	if err != nil {
		return purchase{}, fmt.Errorf("price public buy: %w", err)
	}
	p.tokens = amount
	p.quote = quote
	p.priceAfter = next
	return p, nil
}

// requireBacking fails with ErrInsufficientInventory unless the token escrow
// holds tokens on top of every locked principal.
func (u *unit) requireBacking(ctx context.Context, tokens uint64) error {
	backed, err := addChecked(u.pool.StakedAmount, tokens)
	if err != nil {
		return err
	}
	held, err := u.custody.Balance(ctx, model.AssetToken, u.pool.EscrowToken)
	if err != nil {
		return fmt.Errorf("escrow balance: %w", err)
	}
	if held < backed {
		return fmt.Errorf("%w: escrow holds %d tokens, %d locked, %d requested", ErrInsufficientInventory, held, u.pool.StakedAmount, tokens)
	}
	return nil
}

// settle books p against the pool and collects the quote from buyer. The
// tokens stay in escrow; the caller decides where they go.
func (u *unit) settle(ctx context.Context, buyer common.Address, p purchase) error {
	collected, err := addChecked(u.pool.QuoteAmount, p.quote)
	if err != nil {
		return err
	}
	u.pool.TokenAmount -= p.tokens
	u.pool.QuoteAmount = collected
	u.pool.TokenPrice = p.priceAfter
	if err := u.savePool(ctx); err != nil {
		return err
	}
	return u.transfer(ctx, model.AssetQuote, buyer, u.pool.EscrowQuote, p.quote)
}

func (p purchase) trade(buyer common.Address, pool model.Pool, now int64) model.Trade {
	return model.Trade{
		Participant: buyer,
		SaleType:    pool.SaleType,
		TokenUnits:  p.tokens,
		QuoteUnits:  p.quote,
		PriceBefore: p.priceBefore,
		PriceAfter:  p.priceAfter,
		Timestamp:   now,
	}
}

func (p purchase) event(amount uint64) model.LedgerEvent {
	return model.LedgerEvent{
		Amount:     amount,
		TokenUnits: p.tokens,
		QuoteUnits: p.quote,
		Price:      p.priceAfter,
	}
}

// Buy sells tokens to caller. In the private sale amount is the quote paid at
// the fixed price; in the public sale it is the number of token units bought,
// and the price moves before the quote owed is computed.
func (e *Engine) Buy(ctx context.Context, caller, token common.Address, amount uint64) (model.Trade, error) {
	var trade model.Trade
	err := e.execute(ctx, model.OpBuy, caller, func(ctx context.Context, u *unit) (model.LedgerEvent, error) {
		if err := u.loadPool(ctx); err != nil {
			return model.LedgerEvent{}, err
		}
		p, err := planPurchase(u.pool, token, amount)
		if err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.requireBacking(ctx, p.tokens); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.settle(ctx, caller, p); err != nil {
			return model.LedgerEvent{}, err
		}
		if err := u.transfer(ctx, model.AssetToken, u.pool.EscrowToken, caller, p.tokens); err != nil {
			return model.LedgerEvent{}, err
		}
		trade = p.trade(caller, u.pool, u.now)
		return p.event(amount), nil
	})
	if err != nil {
		return model.Trade{}, err
	}
	return trade, nil
}
