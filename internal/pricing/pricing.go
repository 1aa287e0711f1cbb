// Package pricing implements the presale price curve and the conversions
// between quote currency and token units.
//
// Prices are quote base units per whole token, so every conversion is scaled
// by 10^decimals of the sale token. All products are taken in 256 bits and
// narrowed back to uint64; results round down.
package pricing

import (
	"errors"

	"github.com/holiman/uint256"
)

// MaxDecimals is the largest exponent for which 10^decimals fits in 256 bits.
const MaxDecimals = 77

// ErrArithmeticOverflow is returned when a result does not fit in uint64 or a
// divisor is zero. Valid pool state never produces it.
var ErrArithmeticOverflow = errors.New("pricing: arithmetic overflow")

// PublicPriceAfterBuy returns the public-sale price after tokenUnits are sold:
// price + rate*tokenUnits/10^decimals/2.
func PublicPriceAfterBuy(price, rate, tokenUnits uint64, decimals uint8) (uint64, error) {
	scale, err := decimalScale(decimals)
	if err != nil {
		return 0, err
	}

	step, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(rate), uint256.NewInt(tokenUnits))
	if overflow {
		return 0, ErrArithmeticOverflow
	}
	step.Div(step, scale)
	step.Rsh(step, 1)

	next, overflow := step.AddOverflow(step, uint256.NewInt(price))
	if overflow {
		return 0, ErrArithmeticOverflow
	}
	return narrow(next)
}

// QuoteForTokens returns the quote units owed for tokenUnits at price.
func QuoteForTokens(price, tokenUnits uint64, decimals uint8) (uint64, error) {
	scale, err := decimalScale(decimals)
	if err != nil {
		return 0, err
	}
	return mulDiv(uint256.NewInt(price), uint256.NewInt(tokenUnits), scale)
}

// TokensForQuote returns the token units bought with quoteUnits at price.
func TokensForQuote(price, quoteUnits uint64, decimals uint8) (uint64, error) {
	scale, err := decimalScale(decimals)
	if err != nil {
		return 0, err
	}
	return mulDiv(uint256.NewInt(quoteUnits), scale, uint256.NewInt(price))
}

// ApplyPercent returns amount*percent/100.
func ApplyPercent(amount, percent uint64) (uint64, error) {
	return mulDiv(uint256.NewInt(amount), uint256.NewInt(percent), uint256.NewInt(100))
}

func mulDiv(x, y, d *uint256.Int) (uint64, error) {
	if d.IsZero() {
		return 0, ErrArithmeticOverflow
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return 0, ErrArithmeticOverflow
	}
	return narrow(product.Div(product, d))
}

func decimalScale(decimals uint8) (*uint256.Int, error) {
	if decimals > MaxDecimals {
		return nil, ErrArithmeticOverflow
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals))), nil
}

func narrow(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return v.Uint64(), nil
}
