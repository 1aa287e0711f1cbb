package model

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// Operation names recorded in the event journal.
const (
	OpInitialize    = "initialize"
	OpToggleStatus  = "toggle_status"
	OpSetPublic     = "set_sale_type_public"
	OpSetTokenPrice = "set_token_price"
	OpSetRate       = "set_rate"
	OpSetOwner      = "set_owner"
	OpDepositToken  = "deposit_token"
	OpWithdrawToken = "withdraw_token"
	OpWithdrawQuote = "withdraw_quote"
	OpBuy           = "buy"
	OpStake         = "stake"
	OpClaim         = "claim"
)

// LedgerEvent is the journal representation of a committed operation.
type LedgerEvent struct {
	ID         string          `json:"id"`
	Op         string          `json:"op"`
	Caller     common.Address  `json:"caller"`
	Amount     uint64          `json:"amount,omitempty"`
	TokenUnits uint64          `json:"token_units,omitempty"`
	QuoteUnits uint64          `json:"quote_units,omitempty"`
	Price      uint64          `json:"price,omitempty"`
	Tier       Tier            `json:"tier,omitempty"`
	Target     *common.Address `json:"target,omitempty"`
	Timestamp  int64           `json:"timestamp"`
	RecordedAt string          `json:"recorded_at"`
}

// MarshalJSON ensures LedgerEvent is encoded with stable field names.
func (e LedgerEvent) MarshalJSON() ([]byte, error) {
	type Alias LedgerEvent
	return json.Marshal(Alias(e))
}

// UnmarshalJSON decodes a LedgerEvent from JSON.
func (e *LedgerEvent) UnmarshalJSON(data []byte) error {
	type Alias LedgerEvent
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = LedgerEvent(a)
	return nil
}
