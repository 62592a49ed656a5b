package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"solana-meme-trader/internal/amount"
	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/idhash"
	"solana-meme-trader/internal/jupiter"
	"solana-meme-trader/internal/marketdata"
	"solana-meme-trader/internal/notify"
	"solana-meme-trader/internal/observability"
	"solana-meme-trader/internal/solana"
	"solana-meme-trader/internal/storage"
	"solana-meme-trader/internal/swap"
)

// Admission errors. Each one means "no buy", not a fault.
var (
	ErrBlacklisted         = errors.New("token is blacklisted")
	ErrPositionOpen        = errors.New("token already has an open position")
	ErrRecentTrade         = errors.New("token traded within the duplicate window")
	ErrDailyCapReached     = errors.New("daily buy cap reached for token")
	ErrDuplicateSuggestion = errors.New("suggestion already produced a trade")
	ErrNoPrice             = errors.New("no current price available")
)

// SwapExecutor abstracts swap.Executor for tests.
type SwapExecutor interface {
	Execute(ctx context.Context, req swap.Request) (*domain.ConfirmedSwap, error)
}

// Default configuration values.
const (
	DefaultBuyAmountSOL          = 0.01
	DefaultDuplicateWindow       = 2 * time.Minute
	DefaultDailyBuyCap           = 3
	DefaultBalanceTolerancePct   = 10
	defaultTokenDecimalsFallback = 9
)

// BuyConfig carries the buy-side thresholds.
type BuyConfig struct {
	BuyAmountSOL        float64
	DuplicateWindow     time.Duration
	DailyBuyCap         int
	BalanceTolerancePct float64
}

// DefaultBuyConfig returns the production thresholds.
func DefaultBuyConfig() BuyConfig {
	return BuyConfig{
		BuyAmountSOL:        DefaultBuyAmountSOL,
		DuplicateWindow:     DefaultDuplicateWindow,
		DailyBuyCap:         DefaultDailyBuyCap,
		BalanceTolerancePct: DefaultBalanceTolerancePct,
	}
}

// BuyOptions contains configuration for creating a BuyService.
type BuyOptions struct {
	Trades    storage.TradeStore
	Blacklist storage.BlacklistStore
	Market    marketdata.Client
	Swapper   SwapExecutor
	RPC       solana.RPCClient
	Wallet    string // wallet public key, for balance reconciliation
	Notifier  notify.Notifier
	Config    BuyConfig
	Logger    *log.Logger
}

// BuyService turns an approved suggestion into an open position. A trade
// row exists only after a confirmed on-chain swap; a failed swap leaves no
// trace beyond logs and metrics.
type BuyService struct {
	trades    storage.TradeStore
	blacklist storage.BlacklistStore
	market    marketdata.Client
	swapper   SwapExecutor
	rpc       solana.RPCClient
	wallet    string
	notifier  notify.Notifier
	cfg       BuyConfig
	logger    *log.Logger
	now       func() time.Time // injectable for tests
}

// NewBuyService creates a new BuyService.
func NewBuyService(opts BuyOptions) *BuyService {
	cfg := opts.Config
	if cfg.BuyAmountSOL == 0 {
		cfg.BuyAmountSOL = DefaultBuyAmountSOL
	}
	if cfg.DuplicateWindow == 0 {
		cfg.DuplicateWindow = DefaultDuplicateWindow
	}
	if cfg.DailyBuyCap == 0 {
		cfg.DailyBuyCap = DefaultDailyBuyCap
	}
	if cfg.BalanceTolerancePct == 0 {
		cfg.BalanceTolerancePct = DefaultBalanceTolerancePct
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	return &BuyService{
		trades:    opts.Trades,
		blacklist: opts.Blacklist,
		market:    opts.Market,
		swapper:   opts.Swapper,
		rpc:       opts.RPC,
		wallet:    opts.Wallet,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Buy runs admission, executes the swap, and creates the OPEN trade.
func (s *BuyService) Buy(ctx context.Context, suggestion domain.Suggestion) (*domain.Trade, error) {
	token := suggestion.TokenAddress

	if err := s.admit(ctx, suggestion); err != nil {
		observability.RecordBuy("rejected")
		return nil, err
	}

	// Fresh identity and price: the snapshot price may be minutes old.
	info, err := s.market.TokenInfo(ctx, token)
	if err != nil {
		observability.RecordBuy("error")
		return nil, fmt.Errorf("fetch token info: %w", err)
	}
	price, err := s.market.Price(ctx, token)
	if err != nil {
		observability.RecordBuy("error")
		return nil, fmt.Errorf("fetch price: %w", err)
	}
	if price.Price == nil || *price.Price <= 0 {
		observability.RecordBuy("error")
		return nil, ErrNoPrice
	}
	buyPrice := *price.Price

	decimals := defaultTokenDecimalsFallback
	if info.Decimals != nil {
		decimals = *info.Decimals
	}

	confirmed, err := s.swapper.Execute(ctx, swap.Request{
		InputMint:  jupiter.WSOLMint,
		OutputMint: token,
		AmountRaw:  amount.SOLToLamports(s.cfg.BuyAmountSOL),
		TokenMint:  token,
	})
	if err != nil {
		observability.RecordBuy("swap_failed")
		s.notifier.Send(ctx, notify.KindError,
			fmt.Sprintf("buy of %s failed: %v", suggestion.Symbol, err))
		return nil, fmt.Errorf("buy swap: %w", err)
	}

	buyTime := s.now()
	received := amount.RawToUI(confirmed.AmountOutRaw, decimals)
	received = s.reconcileBalance(ctx, token, decimals, received)

	trade := &domain.Trade{
		TradeID:       idhash.ComputeTradeID(token, confirmed.TxHash, buyTime.UnixMilli()),
		TokenAddress:  token,
		TokenSymbol:   suggestion.Symbol,
		TokenName:     info.Name,
		TokenDecimals: decimals,
		BuyPrice:      buyPrice,
		BuyAmount:     received,
		BuyTxHash:     confirmed.TxHash,
		BuyTime:       buyTime,
		Status:        domain.TradeStatusOpen,
	}
	if suggestion.ID != "" {
		id := suggestion.ID
		trade.SuggestionID = &id
	}

	if err := s.trades.InsertOpen(ctx, trade); err != nil {
		// The swap is already on-chain; surface loudly.
		observability.RecordBuy("store_failed")
		s.notifier.Send(ctx, notify.KindError,
			fmt.Sprintf("bought %s (tx %s) but failed to record trade: %v",
				suggestion.Symbol, confirmed.TxHash, err))
		return nil, fmt.Errorf("record trade: %w", err)
	}

	observability.RecordBuy("success")
	s.logger.Printf("[buy] %s (%s): %.4f SOL -> %f tokens @ %.10f, tx %s",
		suggestion.Symbol, token, s.cfg.BuyAmountSOL, received, buyPrice, confirmed.TxHash)
	s.notifier.Send(ctx, notify.KindBuy,
		fmt.Sprintf("bought %s: %.4f SOL @ %.10f (score %.0f), tx %s",
			suggestion.Symbol, s.cfg.BuyAmountSOL, buyPrice, suggestion.Score, confirmed.TxHash))
	return trade, nil
}

// admit runs the pre-purchase checks. All must pass.
func (s *BuyService) admit(ctx context.Context, suggestion domain.Suggestion) error {
	token := suggestion.TokenAddress
	now := s.now()

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		return fmt.Errorf("check blacklist: %w", err)
	}
	if blacklisted {
		return ErrBlacklisted
	}

	if _, err := s.trades.FindOpenByToken(ctx, token); err == nil {
		return ErrPositionOpen
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check open position: %w", err)
	}

	recent, err := s.trades.CountBuysSince(ctx, token, now.Add(-s.cfg.DuplicateWindow))
	if err != nil {
		return fmt.Errorf("check duplicate window: %w", err)
	}
	if recent > 0 {
		return ErrRecentTrade
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.trades.CountBuysSince(ctx, token, dayStart)
	if err != nil {
		return fmt.Errorf("check daily cap: %w", err)
	}
	if today >= s.cfg.DailyBuyCap {
		return ErrDailyCapReached
	}

	if suggestion.ID != "" {
		if _, err := s.trades.FindBySuggestionID(ctx, suggestion.ID); err == nil {
			return ErrDuplicateSuggestion
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check suggestion id: %w", err)
		}
	}

	return nil
}

// reconcileBalance compares the executor's computed amount against the real
// wallet balance. Beyond the tolerance the observed balance wins: fees and
// transfer taxes make the quote optimistic.
func (s *BuyService) reconcileBalance(ctx context.Context, token string, decimals int, computed float64) float64 {
	balance, err := s.rpc.GetTokenAccountBalance(ctx, s.wallet, token)
	if err != nil {
		s.logger.Printf("[buy] balance reconciliation skipped for %s: %v", token, err)
		return computed
	}

	observed := amount.RawToUI(balance.Amount, decimals)
	if computed <= 0 {
		return observed
	}
	divergence := math.Abs(observed-computed) / computed * 100
	if divergence > s.cfg.BalanceTolerancePct {
		s.logger.Printf("[buy] balance divergence %.1f%% for %s: computed %f, observed %f",
			divergence, token, computed, observed)
		return observed
	}
	return computed
}
