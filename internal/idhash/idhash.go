// Package idhash computes deterministic identifiers for trades.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(token_address|buy_tx_hash|buy_time_ms)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(tokenAddress, buyTxHash string, buyTimeMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", tokenAddress, buyTxHash, buyTimeMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
