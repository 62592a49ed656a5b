package solana

// TokenBalance is the balance of one SPL token account.
type TokenBalance struct {
	Account  string // token account address
	Mint     string
	Amount   uint64 // raw base units
	Decimals int
	UIAmount float64
}

// LatestBlockhash from getLatestBlockhash.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendOpts defines optional parameters for sendTransaction.
type SendOpts struct {
	SkipPreflight bool
	MaxRetries    int
}

// SimulationResult from simulateTransaction.
type SimulationResult struct {
	Err           interface{} // nil on success; structured error otherwise
	Logs          []string
	UnitsConsumed uint64
}

// Failed reports whether the simulated transaction would fail on-chain.
func (r *SimulationResult) Failed() bool {
	return r.Err != nil
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *uint64
	ConfirmationStatus string // "processed", "confirmed", "finalized"
	Err                interface{}
}

// Confirmed reports whether the transaction reached at least the confirmed
// commitment without an execution error.
func (s *SignatureStatus) Confirmed() bool {
	if s == nil || s.Err != nil {
		return false
	}
	return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
}
