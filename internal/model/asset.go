package model

import "github.com/ethereum/go-ethereum/common"

// Asset names one of the two currencies the pool handles.
type Asset string

const (
	AssetQuote Asset = "quote"
	AssetToken Asset = "token"
)

// Valid reports whether a is a known asset.
func (a Asset) Valid() bool {
	return a == AssetQuote || a == AssetToken
}

// Transfer moves Amount units of Asset between two custody accounts.
type Transfer struct {
	Asset  Asset          `json:"asset"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}
