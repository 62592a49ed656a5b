// Package swap executes token swaps through a layered fallback chain:
// standard aggregator route, widened slippage, reduced amount, and finally
// a native pool route. Only a confirmed on-chain signature counts as
// success.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/jupiter"
	"solana-meme-trader/internal/observability"
	"solana-meme-trader/internal/raydium"
	"solana-meme-trader/internal/solana"
	"solana-meme-trader/internal/volatility"
)

// Sentinel errors callers branch on.
var (
	// ErrAllStrategiesFailed wraps the last attempt error after the whole
	// fallback chain has been exhausted.
	ErrAllStrategiesFailed = errors.New("all swap strategies failed")

	// ErrNoTokenAccount is returned for a sell when the wallet holds no
	// token account or a zero balance. Hard failure: no fallback runs.
	ErrNoTokenAccount = errors.New("no token account or zero balance")
)

// Config holds executor tuning. Slippage values are basis points.
type Config struct {
	DefaultSlippageBps int
	HighSlippageBps    int
	ExtremeSlippageBps int

	// WidenedSlippageBps is used by the widened-slippage fallback and the
	// native route.
	WidenedSlippageBps int
	// WidenedDelay is how long to wait before the widened attempt, letting
	// a price spike settle.
	WidenedDelay time.Duration

	// ReducedFraction of the original amount used by the reduced-amount
	// fallback.
	ReducedFraction float64

	// NativeMaxAccounts caps account usage on the native direct route.
	NativeMaxAccounts int

	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
}

// DefaultConfig returns the production executor configuration.
func DefaultConfig() Config {
	return Config{
		DefaultSlippageBps:  500,
		HighSlippageBps:     1000,
		ExtremeSlippageBps:  2000,
		WidenedSlippageBps:  2000,
		WidenedDelay:        3 * time.Second,
		ReducedFraction:     0.95,
		NativeMaxAccounts:   3,
		ConfirmTimeout:      8 * time.Second,
		ConfirmPollInterval: 2 * time.Second,
	}
}

// Aggregator is the quote/build surface of the aggregator client.
type Aggregator interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, error)
	BuildSwap(ctx context.Context, quote *jupiter.Quote, userPubkey string) (string, error)
}

// NativeRouter is the quote/build surface of the native pool client.
type NativeRouter interface {
	ComputeSwap(ctx context.Context, req raydium.ComputeRequest) (*raydium.Compute, error)
	BuildSwap(ctx context.Context, compute *raydium.Compute, wallet string) (string, error)
}

// Signer signs serialized transactions.
type Signer interface {
	PublicKey() string
	SignTransaction(txBase64 string) (string, error)
}

// Request describes one swap to execute. For sells the input mint is the
// token and Sell must be set so preconditions apply.
type Request struct {
	InputMint  string
	OutputMint string
	AmountRaw  uint64

	// TokenMint is the meme-token side of the pair, used for volatility
	// classification regardless of direction.
	TokenMint string

	Sell bool
}

// Options configures an Executor.
type Options struct {
	RPC        solana.RPCClient
	WS         solana.WSClient // optional confirmation fast-path
	Aggregator Aggregator
	Native     NativeRouter // optional; native fallback skipped when nil
	Signer     Signer
	Volatility volatility.Registry
	Config     Config
	Logger     *log.Logger
}

// Executor runs the fallback chain.
type Executor struct {
	rpc        solana.RPCClient
	ws         solana.WSClient
	aggregator Aggregator
	native     NativeRouter
	signer     Signer
	volatility volatility.Registry
	cfg        Config
	logger     *log.Logger

	sleep func(ctx context.Context, d time.Duration) error // injectable for tests
}

// NewExecutor creates an Executor.
func NewExecutor(opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		rpc:        opts.RPC,
		ws:         opts.WS,
		aggregator: opts.Aggregator,
		native:     opts.Native,
		signer:     opts.Signer,
		volatility: opts.Volatility,
		cfg:        opts.Config,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// attemptPlan is one prepared step of the fallback chain.
type attemptPlan struct {
	strategy    domain.SwapStrategy
	amount      uint64
	slippageBps int
	delay       time.Duration
	native      bool
}

// Execute runs the request through the fallback chain and returns the first
// confirmed swap.
func (e *Executor) Execute(ctx context.Context, req Request) (*domain.ConfirmedSwap, error) {
	if req.Sell {
		if err := e.checkSellPreconditions(ctx, req); err != nil {
			return nil, err
		}
	}

	plans, err := e.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, plan := range plans {
		if plan.delay > 0 {
			if err := e.sleep(ctx, plan.delay); err != nil {
				return nil, err
			}
		}
		if plan.native {
			// Reaching the last resort means aggregator routing kept
			// failing for this token.
			if err := e.volatility.MarkExtreme(ctx, req.TokenMint); err != nil {
				e.logger.Printf("mark extreme %s: %v", req.TokenMint, err)
			}
		}

		attempt := e.runAttempt(ctx, req, plan)
		observability.RecordSwapAttempt(string(attempt.Strategy), string(attempt.Outcome))

		if attempt.Outcome == domain.SwapOutcomeConfirmed {
			e.logger.Printf("swap confirmed %s->%s strategy=%s tx=%s",
				req.InputMint, req.OutputMint, plan.strategy, attempt.TxHash)
			return &domain.ConfirmedSwap{
				TxHash:       attempt.TxHash,
				Strategy:     plan.strategy,
				InputMint:    req.InputMint,
				OutputMint:   req.OutputMint,
				AmountInRaw:  plan.amount,
				AmountOutRaw: attempt.AmountOutRaw,
				SlippageBps:  plan.slippageBps,
			}, nil
		}

		lastErr = attempt.Err
		e.logger.Printf("swap attempt failed strategy=%s outcome=%s: %v",
			plan.strategy, attempt.Outcome, attempt.Err)

		if isSlippageError(attempt.Err) {
			if err := e.volatility.MarkHigh(ctx, req.TokenMint); err != nil {
				e.logger.Printf("mark high %s: %v", req.TokenMint, err)
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrAllStrategiesFailed, lastErr)
}

// checkSellPreconditions verifies the wallet can actually deliver the
// tokens being sold.
func (e *Executor) checkSellPreconditions(ctx context.Context, req Request) error {
	balance, err := e.rpc.GetTokenAccountBalance(ctx, e.signer.PublicKey(), req.InputMint)
	if errors.Is(err, solana.ErrNoTokenAccount) {
		return fmt.Errorf("%w: %s", ErrNoTokenAccount, req.InputMint)
	}
	if err != nil {
		return fmt.Errorf("sell precondition balance check: %w", err)
	}
	if balance.Amount == 0 {
		return fmt.Errorf("%w: %s", ErrNoTokenAccount, req.InputMint)
	}
	if balance.Amount < req.AmountRaw {
		return fmt.Errorf("sell amount %d exceeds wallet balance %d", req.AmountRaw, balance.Amount)
	}
	return nil
}

// plan builds the ordered fallback chain for the request.
func (e *Executor) plan(ctx context.Context, req Request) ([]attemptPlan, error) {
	base, err := e.selectSlippage(ctx, req.TokenMint)
	if err != nil {
		return nil, err
	}

	reduced := uint64(float64(req.AmountRaw) * e.cfg.ReducedFraction)
	if reduced == 0 {
		reduced = req.AmountRaw
	}

	plans := []attemptPlan{
		{strategy: domain.SwapStrategyStandard, amount: req.AmountRaw, slippageBps: base},
		{strategy: domain.SwapStrategyWidenedSlippage, amount: req.AmountRaw,
			slippageBps: e.cfg.WidenedSlippageBps, delay: e.cfg.WidenedDelay},
		{strategy: domain.SwapStrategyReducedAmount, amount: reduced, slippageBps: base},
	}
	if e.native != nil {
		plans = append(plans, attemptPlan{
			strategy: domain.SwapStrategyNativePool, amount: req.AmountRaw,
			slippageBps: e.cfg.WidenedSlippageBps, native: true,
		})
	}
	return plans, nil
}

// selectSlippage picks the starting slippage from the token's volatility
// classification.
func (e *Executor) selectSlippage(ctx context.Context, token string) (int, error) {
	extreme, err := e.volatility.IsExtreme(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("volatility lookup: %w", err)
	}
	if extreme {
		return e.cfg.ExtremeSlippageBps, nil
	}
	high, err := e.volatility.IsHigh(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("volatility lookup: %w", err)
	}
	if high {
		return e.cfg.HighSlippageBps, nil
	}
	return e.cfg.DefaultSlippageBps, nil
}

// runAttempt executes one step: quote, build, sign, simulate, send,
// confirm.
func (e *Executor) runAttempt(ctx context.Context, req Request, plan attemptPlan) domain.SwapAttempt {
	attempt := domain.SwapAttempt{
		Strategy:    plan.strategy,
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		AmountInRaw: plan.amount,
		SlippageBps: plan.slippageBps,
	}

	unsigned, err := e.buildTransaction(ctx, req, plan, &attempt)
	if err != nil {
		attempt.Err = err
		return attempt
	}

	signed, err := e.signer.SignTransaction(unsigned)
	if err != nil {
		attempt.Outcome = domain.SwapOutcomeSignFailed
		attempt.Err = fmt.Errorf("sign: %w", err)
		return attempt
	}

	sim, err := e.rpc.SimulateTransaction(ctx, signed)
	if err != nil {
		attempt.Outcome = domain.SwapOutcomeSimulatedFailure
		attempt.Err = fmt.Errorf("simulate: %w", err)
		return attempt
	}
	if sim.Failed() {
		for _, line := range sim.Logs {
			e.logger.Printf("simulation log: %s", line)
		}
		attempt.Outcome = domain.SwapOutcomeSimulatedFailure
		attempt.Err = fmt.Errorf("simulation failed: %v (%s)", sim.Err, strings.Join(sim.Logs, "; "))
		return attempt
	}

	// Simulation already ran; preflight would only repeat it.
	sig, err := e.rpc.SendTransaction(ctx, signed, &solana.SendOpts{SkipPreflight: true, MaxRetries: 2})
	if err != nil {
		attempt.Outcome = domain.SwapOutcomeSubmitFailed
		attempt.Err = fmt.Errorf("send: %w", err)
		return attempt
	}

	if err := e.confirm(ctx, sig); err != nil {
		attempt.Outcome = domain.SwapOutcomeUnconfirmed
		attempt.Err = fmt.Errorf("confirm %s: %w", sig, err)
		return attempt
	}

	attempt.Outcome = domain.SwapOutcomeConfirmed
	attempt.TxHash = sig
	return attempt
}

// buildTransaction produces the unsigned transaction for the plan, setting
// the attempt outcome on failure.
func (e *Executor) buildTransaction(ctx context.Context, req Request, plan attemptPlan, attempt *domain.SwapAttempt) (string, error) {
	if plan.native {
		compute, err := e.native.ComputeSwap(ctx, raydium.ComputeRequest{
			InputMint:   req.InputMint,
			OutputMint:  req.OutputMint,
			Amount:      plan.amount,
			SlippageBps: plan.slippageBps,
		})
		if err != nil {
			attempt.Outcome = domain.SwapOutcomeQuoteFailed
			return "", fmt.Errorf("native quote: %w", err)
		}
		attempt.AmountOutRaw = compute.OutAmount
		unsigned, err := e.native.BuildSwap(ctx, compute, e.signer.PublicKey())
		if err != nil {
			attempt.Outcome = domain.SwapOutcomeBuildFailed
			return "", fmt.Errorf("native build: %w", err)
		}
		return unsigned, nil
	}

	quote, err := e.aggregator.Quote(ctx, jupiter.QuoteRequest{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		Amount:      plan.amount,
		SlippageBps: plan.slippageBps,
	})
	if err != nil {
		attempt.Outcome = domain.SwapOutcomeQuoteFailed
		return "", fmt.Errorf("quote: %w", err)
	}
	attempt.AmountOutRaw = quote.OutAmount
	unsigned, err := e.aggregator.BuildSwap(ctx, quote, e.signer.PublicKey())
	if err != nil {
		attempt.Outcome = domain.SwapOutcomeBuildFailed
		return "", fmt.Errorf("build: %w", err)
	}
	return unsigned, nil
}

// confirm waits for the signature to reach confirmed commitment within the
// configured budget. The WS subscription is the fast path; polling
// getSignatureStatuses covers missed notifications.
func (e *Executor) confirm(ctx context.Context, sig string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ConfirmTimeout)
	defer cancel()

	var wsCh <-chan solana.SignatureResult
	if e.ws != nil {
		ch, err := e.ws.SubscribeSignature(ctx, sig)
		if err != nil {
			e.logger.Printf("ws subscribe %s: %v (falling back to polling)", sig, err)
		} else {
			wsCh = ch
		}
	}

	ticker := time.NewTicker(e.cfg.ConfirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation window elapsed: %w", ctx.Err())
		case result, ok := <-wsCh:
			if !ok {
				wsCh = nil // channel closed, keep polling
				continue
			}
			if result.Err != nil {
				return fmt.Errorf("transaction failed on-chain: %v", result.Err)
			}
			return nil
		case <-ticker.C:
			statuses, err := e.rpc.GetSignatureStatuses(ctx, []string{sig})
			if err != nil {
				e.logger.Printf("poll status %s: %v", sig, err)
				continue
			}
			if len(statuses) == 0 || statuses[0] == nil {
				continue
			}
			status := statuses[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on-chain: %v", status.Err)
			}
			if status.Confirmed() {
				return nil
			}
		}
	}
}

// isSlippageError detects the slippage-exceeded program error, in either
// hex or decimal rendering.
func isSlippageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "0x1788") ||
		strings.Contains(msg, "custom:6024") ||
		strings.Contains(msg, "custom\":6024") ||
		strings.Contains(msg, "slippage tolerance exceeded")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
