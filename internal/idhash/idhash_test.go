package idhash

import (
	"testing"
)

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name         string
		tokenAddress string
		buyTxHash    string
		buyTimeMs    int64
	}{
		{
			name:         "basic trade",
			tokenAddress: "TokenMint123ABC",
			buyTxHash:    "TxSig789GHI",
			buyTimeMs:    1704067234567,
		},
		{
			name:         "empty tx hash",
			tokenAddress: "TokenMint123ABC",
			buyTxHash:    "",
			buyTimeMs:    1704067300000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeID(tt.tokenAddress, tt.buyTxHash, tt.buyTimeMs)

			if len(got) != 64 {
				t.Errorf("ComputeTradeID() length = %d, want 64", len(got))
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeTradeID(tt.tokenAddress, tt.buyTxHash, tt.buyTimeMs)
			if got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DifferentInputs(t *testing.T) {
	base := ComputeTradeID("TokenA", "tx1", 1000)

	variants := []string{
		ComputeTradeID("TokenB", "tx1", 1000),
		ComputeTradeID("TokenA", "tx2", 1000),
		ComputeTradeID("TokenA", "tx1", 1001),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base hash", i)
		}
	}

	// Delimiter prevents ambiguous concatenation
	a := ComputeTradeID("TokenA", "Btx", 1000)
	b := ComputeTradeID("TokenAB", "tx", 1000)
	if a == b {
		t.Error("delimiter failed to separate fields")
	}
}
