package domain

// SwapStrategy identifies one step of the executor's fallback chain.
type SwapStrategy string

const (
	SwapStrategyStandard        SwapStrategy = "standard"
	SwapStrategyWidenedSlippage SwapStrategy = "widened_slippage"
	SwapStrategyReducedAmount   SwapStrategy = "reduced_amount"
	SwapStrategyNativePool      SwapStrategy = "native_pool_route"

	// SwapStrategyLegacyQuote labels attempts routed through the old
	// quote API. Not part of the default chain; kept so recorded
	// attempts from that path stay classifiable.
	SwapStrategyLegacyQuote SwapStrategy = "legacy_quote_api"
)

// SwapOutcome classifies where a swap attempt terminated.
type SwapOutcome string

const (
	SwapOutcomeQuoteFailed      SwapOutcome = "quote_failed"
	SwapOutcomeBuildFailed      SwapOutcome = "build_failed"
	SwapOutcomeSignFailed       SwapOutcome = "sign_failed"
	SwapOutcomeSimulatedFailure SwapOutcome = "simulated_failure"
	SwapOutcomeSubmitFailed     SwapOutcome = "submit_failed"
	SwapOutcomeUnconfirmed      SwapOutcome = "unconfirmed"
	SwapOutcomeConfirmed        SwapOutcome = "confirmed"
)

// SwapAttempt records one attempt within an executor invocation.
// Transient: produced and discarded inside a single Execute call.
type SwapAttempt struct {
	Strategy     SwapStrategy
	InputMint    string
	OutputMint   string
	AmountInRaw  uint64
	AmountOutRaw uint64 // quoted output, set once the route is computed
	SlippageBps  int
	Outcome      SwapOutcome
	TxHash       string // set only when Outcome is confirmed
	Err          error
}

// ConfirmedSwap is the terminal success of a swap execution.
type ConfirmedSwap struct {
	TxHash       string
	Strategy     SwapStrategy
	InputMint    string
	OutputMint   string
	AmountInRaw  uint64
	AmountOutRaw uint64 // quoted output; buys book this as tokens received
	SlippageBps  int
}
