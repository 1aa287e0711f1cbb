package model

import "github.com/ethereum/go-ethereum/common"

// SaleType selects how the pool prices tokens.
type SaleType string

const (
	SalePrivate SaleType = "private"
	SalePublic  SaleType = "public"
)

// Pool is the singleton presale record.
type Pool struct {
	Owner         common.Address `json:"owner"`
	EscrowQuote   common.Address `json:"escrow_quote"`
	EscrowToken   common.Address `json:"escrow_token"`
	Token         common.Address `json:"token"`
	TokenDecimals uint8          `json:"token_decimals"`
	TokenAmount   uint64         `json:"token_amount"`
	QuoteAmount   uint64         `json:"quote_amount"`
	TokenPrice    uint64         `json:"token_price"`
	Status        bool           `json:"status"`
	SaleType      SaleType       `json:"sale_type"`
	Rate          uint64         `json:"rate"`
	StakedAmount  uint64         `json:"staked_amount"`
	PayoutsOwed   uint64         `json:"payouts_owed"`
	CreatedAt     int64          `json:"created_at"`
	UpdatedAt     int64          `json:"updated_at"`
}

// IsPublic reports whether the pool is in the dynamically priced sale.
func (p Pool) IsPublic() bool {
	return p.SaleType == SalePublic
}
