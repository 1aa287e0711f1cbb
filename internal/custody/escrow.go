package custody

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	quoteVaultSeed = "VAULT_SEED"
	tokenVaultSeed = "TOKEN_VAULT_SEED"
)

// EscrowAddresses derives the quote and token escrow accounts for token.
func EscrowAddresses(token common.Address) (quote common.Address, tokens common.Address) {
	quote = common.BytesToAddress(crypto.Keccak256([]byte(quoteVaultSeed)))
	tokens = common.BytesToAddress(crypto.Keccak256([]byte(tokenVaultSeed), token.Bytes()))
	return quote, tokens
}
