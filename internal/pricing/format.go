package pricing

import (
	"math/big"
	"strings"
)

// FormatUnits renders a scaled integer amount as a decimal string with the
// trailing zero fraction trimmed.
func FormatUnits(units uint64, decimals uint8) string {
	value := new(big.Int).SetUint64(units)
	if decimals == 0 {
		return value.String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	text := new(big.Rat).SetFrac(value, denom).FloatString(int(decimals))
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
