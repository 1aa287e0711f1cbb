package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20MetaABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20MetaABI     abi.ABI
	erc20MetaABIOnce sync.Once
	erc20MetaABIErr  error
)

func erc20MetaABIInstance() (abi.ABI, error) {
	erc20MetaABIOnce.Do(func() {
		erc20MetaABI, erc20MetaABIErr = abi.JSON(strings.NewReader(erc20MetaABIJSON))
	})
	return erc20MetaABI, erc20MetaABIErr
}

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// TokenMeta captures the ERC20 fields the presale needs.
type TokenMeta struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
}

// FetchTokenMeta loads decimals and symbol of an ERC20 token. Symbol is
// best-effort; decimals are required.
func FetchTokenMeta(ctx context.Context, caller ContractCaller, token common.Address) (TokenMeta, error) {
	meta := TokenMeta{Address: token}
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}

	parsed, err := erc20MetaABIInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}

	call := func(method string) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := caller.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) != 1 {
			return nil, fmt.Errorf("%s return size %d", method, len(values))
		}
		return values, nil
	}

	values, err := call("decimals")
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("decimals unexpected type %T", values[0])
	}
	meta.Decimals = decimals

	if values, err := call("symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	}

	return meta, nil
}
