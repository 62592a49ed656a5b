// Package amount provides decimal-base conversions between raw on-chain
// integer token amounts and human-readable UI amounts.
package amount

import "math"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// UIToRaw converts a UI amount to the raw on-chain integer amount for a
// token with the given number of decimals. The result is truncated, never
// rounded up: over-asking by one base unit can fail a full-balance sell.
func UIToRaw(ui float64, decimals int) uint64 {
	if ui <= 0 {
		return 0
	}
	return uint64(ui * math.Pow10(decimals))
}

// RawToUI converts a raw on-chain integer amount back to a UI amount.
func RawToUI(raw uint64, decimals int) float64 {
	return float64(raw) / math.Pow10(decimals)
}

// SOLToLamports converts a SOL amount to lamports.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * LamportsPerSOL)
}

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}
