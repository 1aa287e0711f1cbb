package model

import "github.com/ethereum/go-ethereum/common"

// Trade is the outcome of a purchase, with or without a stake.
type Trade struct {
	Participant common.Address `json:"participant"`
	SaleType    SaleType       `json:"sale_type"`
	TokenUnits  uint64         `json:"token_units"`
	QuoteUnits  uint64         `json:"quote_units"`
	PriceBefore uint64         `json:"price_before"`
	PriceAfter  uint64         `json:"price_after"`
	Tier        Tier           `json:"tier,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// Claim is the outcome of a matured stake claim.
type Claim struct {
	Participant common.Address `json:"participant"`
	Tier        Tier           `json:"tier"`
	Principal   uint64         `json:"principal"`
	Payout      uint64         `json:"payout"`
	Timestamp   int64          `json:"timestamp"`
}

// Solvency compares the token escrow against what the pool owes.
type Solvency struct {
	EscrowTokens uint64 `json:"escrow_tokens"`
	Inventory    uint64 `json:"inventory"`
	StakedAmount uint64 `json:"staked_amount"`
	PayoutsOwed  uint64 `json:"payouts_owed"`
	EscrowQuote  uint64 `json:"escrow_quote"`
	QuoteAmount  uint64 `json:"quote_amount"`
	Shortfall    uint64 `json:"shortfall"`
	Solvent      bool   `json:"solvent"`
}
