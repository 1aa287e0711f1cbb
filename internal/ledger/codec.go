package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeRecord serializes a record for byte-oriented backends.
func EncodeRecord(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord deserializes a record produced by EncodeRecord.
func DecodeRecord(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// EncodeBalance serializes a balance as a decimal string.
func EncodeBalance(amount uint64) []byte {
	return []byte(strconv.FormatUint(amount, 10))
}

// DecodeBalance parses a balance produced by EncodeBalance.
func DecodeBalance(data []byte) (uint64, error) {
	amount, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	return amount, nil
}
