package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"presaleLedger/internal/model"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseTier accepts a month count with an optional "m" suffix, e.g. "6" or "6m".
func ParseTier(input string) (model.Tier, error) {
	input = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(input)), "m")
	months, err := strconv.ParseUint(input, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid tier: %s", input)
	}
	tier := model.Tier(months)
	if !tier.Valid() {
		return 0, fmt.Errorf("invalid tier: %s", input)
	}
	return tier, nil
}
