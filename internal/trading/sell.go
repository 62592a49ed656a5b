package trading

import (
	"context"
	"fmt"
	"log"
	"time"

	"solana-meme-trader/internal/amount"
	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/jupiter"
	"solana-meme-trader/internal/notify"
	"solana-meme-trader/internal/observability"
	"solana-meme-trader/internal/solana"
	"solana-meme-trader/internal/storage"
	"solana-meme-trader/internal/swap"
	"solana-meme-trader/internal/volatility"
)

// DefaultSellPortion leaves a sliver behind so the swap never fails on
// rounding against the live balance.
const DefaultSellPortion = 0.995

// SellOptions contains configuration for creating a SellService.
type SellOptions struct {
	Trades     storage.TradeStore
	Blacklist  storage.BlacklistStore
	Swapper    SwapExecutor
	RPC        solana.RPCClient
	Wallet     string
	Volatility volatility.Registry
	Notifier   notify.Notifier
	Portion    float64 // fraction of live balance to sell
	Logger     *log.Logger
}

// SellService closes positions. The CLOSED transition happens only after a
// confirmed on-chain swap; any failure leaves the trade OPEN untouched.
type SellService struct {
	trades     storage.TradeStore
	blacklist  storage.BlacklistStore
	swapper    SwapExecutor
	rpc        solana.RPCClient
	wallet     string
	volatility volatility.Registry
	notifier   notify.Notifier
	portion    float64
	logger     *log.Logger
	now        func() time.Time // injectable for tests
}

// NewSellService creates a new SellService.
func NewSellService(opts SellOptions) *SellService {
	portion := opts.Portion
	if portion == 0 {
		portion = DefaultSellPortion
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	return &SellService{
		trades:     opts.Trades,
		blacklist:  opts.Blacklist,
		swapper:    opts.Swapper,
		rpc:        opts.RPC,
		wallet:     opts.Wallet,
		volatility: opts.Volatility,
		notifier:   notifier,
		portion:    portion,
		logger:     logger,
		now:        time.Now,
	}
}

// Sell liquidates an open position at the current price for the given exit
// reason. The amount sold is a portion of the live wallet balance, not the
// recorded buy amount: transfer taxes and dust make the record optimistic.
func (s *SellService) Sell(ctx context.Context, trade *domain.Trade, currentPrice float64, reason string) error {
	token := trade.TokenAddress

	balance, err := s.rpc.GetTokenAccountBalance(ctx, s.wallet, token)
	if err != nil {
		return s.failOpen(ctx, trade, reason, fmt.Errorf("fetch token balance: %w", err))
	}

	sellRaw := uint64(float64(balance.Amount) * s.portion)
	if sellRaw == 0 {
		return s.failOpen(ctx, trade, reason, fmt.Errorf("nothing to sell: balance %d", balance.Amount))
	}

	confirmed, err := s.swapper.Execute(ctx, swapSellRequest(token, sellRaw))
	if err != nil {
		return s.failOpen(ctx, trade, reason, fmt.Errorf("sell swap: %w", err))
	}

	sellAmount := amount.RawToUI(sellRaw, trade.TokenDecimals)

	// Proportional cost basis: selling less than was bought realizes only
	// that slice of the entry cost.
	costBasis := trade.BuyPrice * trade.BuyAmount
	if sellAmount < trade.BuyAmount {
		costBasis = trade.BuyPrice * sellAmount
	}
	proceeds := currentPrice * sellAmount
	plAmount := proceeds - costBasis
	plPct := trade.GainPct(currentPrice)

	err = s.trades.Close(ctx, trade.TradeID, storage.CloseFields{
		SellPrice:        currentPrice,
		SellAmount:       sellAmount,
		SellTxHash:       confirmed.TxHash,
		SellTime:         s.now(),
		SellReason:       reason,
		ProfitLossAmount: plAmount,
		ProfitLossPct:    plPct,
	})
	if err != nil {
		// The swap is already on-chain; surface loudly.
		observability.RecordSell(reason, "store_failed", plPct)
		s.notifier.Send(ctx, notify.KindError,
			fmt.Sprintf("sold %s (tx %s) but failed to close trade: %v",
				trade.TokenSymbol, confirmed.TxHash, err))
		return fmt.Errorf("close trade: %w", err)
	}

	if reason == domain.ExitReasonStopLoss {
		entry := &domain.BlacklistEntry{
			TokenAddress:  token,
			TokenSymbol:   trade.TokenSymbol,
			Reason:        fmt.Sprintf("stop loss at %.1f%%", plPct),
			LossPct:       plPct,
			BlacklistedAt: s.now(),
		}
		if err := s.blacklist.Upsert(ctx, entry); err != nil {
			s.logger.Printf("[sell] blacklist upsert failed for %s: %v", token, err)
		} else {
			observability.RecordBlacklist()
		}
	}

	observability.RecordSell(reason, "success", plPct)
	s.logger.Printf("[sell] %s (%s): %f tokens @ %.10f, P&L %.2f%%, reason %s, tx %s",
		trade.TokenSymbol, token, sellAmount, currentPrice, plPct, reason, confirmed.TxHash)
	s.notifier.Send(ctx, notify.KindSell,
		fmt.Sprintf("sold %s: P&L %.2f%% (%s), tx %s",
			trade.TokenSymbol, plPct, reason, confirmed.TxHash))
	return nil
}

// swapSellRequest builds the token -> SOL swap request with the sell
// preconditions enabled.
func swapSellRequest(token string, raw uint64) swap.Request {
	return swap.Request{
		InputMint:  token,
		OutputMint: jupiter.WSOLMint,
		AmountRaw:  raw,
		TokenMint:  token,
		Sell:       true,
	}
}

// failOpen records a failed sell attempt. The trade stays OPEN and the
// token is marked high volatility so the next attempt widens slippage.
func (s *SellService) failOpen(ctx context.Context, trade *domain.Trade, reason string, cause error) error {
	if s.volatility != nil {
		if err := s.volatility.MarkHigh(ctx, trade.TokenAddress); err != nil {
			s.logger.Printf("[sell] volatility mark failed for %s: %v", trade.TokenAddress, err)
		}
	}
	observability.RecordSell(reason, "failed", 0)
	s.logger.Printf("[sell] %s (%s) stays open: %v", trade.TokenSymbol, trade.TokenAddress, cause)
	s.notifier.Send(ctx, notify.KindError,
		fmt.Sprintf("sell of %s failed, position stays open: %v", trade.TokenSymbol, cause))
	return cause
}
