// Package main runs the autonomous trading agent: the analysis scheduler
// feeds approved suggestions into the position monitor, which buys, watches
// and exits positions through the swap fallback chain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-meme-trader/internal/evaluation"
	"solana-meme-trader/internal/jupiter"
	"solana-meme-trader/internal/marketdata"
	"solana-meme-trader/internal/notify"
	"solana-meme-trader/internal/observability"
	"solana-meme-trader/internal/raydium"
	"solana-meme-trader/internal/scheduler"
	"solana-meme-trader/internal/solana"
	"solana-meme-trader/internal/storage"
	chstore "solana-meme-trader/internal/storage/clickhouse"
	"solana-meme-trader/internal/storage/memory"
	"solana-meme-trader/internal/storage/migrations"
	pgstore "solana-meme-trader/internal/storage/postgres"
	"solana-meme-trader/internal/swap"
	"solana-meme-trader/internal/trading"
	"solana-meme-trader/internal/volatility"
	"solana-meme-trader/internal/wallet"
)

// Default external endpoints, overridable by flag or env.
const (
	defaultJupiterURL = "https://quote-api.jup.ag/v6"
	defaultRaydiumURL = "https://transaction-v1.raydium.io"
)

// Agent holds the running components for the HTTP status endpoint.
type Agent struct {
	scheduler *scheduler.AnalysisScheduler
	monitor   *trading.Monitor
	queue     *scheduler.SuggestionQueue
	wallet    string
	startedAt time.Time
	logger    *log.Logger
}

// agentStores holds the storage implementations the agent needs.
type agentStores struct {
	trades       storage.TradeStore
	blacklist    storage.BlacklistStore
	priceHistory storage.PriceHistoryStore
}

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, confirmation fast-path)")
	marketDataURL := flag.String("market-data-url", os.Getenv("MARKET_DATA_URL"), "Market-data API base URL")
	marketDataKey := flag.String("market-data-key", os.Getenv("MARKET_DATA_API_KEY"), "Market-data API key")
	jupiterURL := flag.String("jupiter-url", envOr("JUPITER_URL", defaultJupiterURL), "Jupiter aggregator base URL")
	raydiumURL := flag.String("raydium-url", envOr("RAYDIUM_URL", defaultRaydiumURL), "Raydium trade API base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the volatility registry (optional, in-memory fallback)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	analysisInterval := flag.Duration("analysis-interval", scheduler.DefaultInterval, "Analysis cycle interval")
	monitorInterval := flag.Duration("monitor-interval", trading.DefaultMonitorInterval, "Position monitor interval")
	buyAmount := flag.Float64("buy-amount", trading.DefaultBuyAmountSOL, "Buy size in SOL per position")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for health/metrics/status")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags. The wallet key is env-only so it never shows
	// up in process listings.
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *marketDataURL == "" {
		logger.Fatal("--market-data-url is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	walletKey := os.Getenv("WALLET_PRIVATE_KEY")
	if walletKey == "" {
		logger.Fatal("WALLET_PRIVATE_KEY env var is required")
	}

	signer, err := wallet.NewFromBase58(walletKey)
	if err != nil {
		logger.Fatalf("Failed to load wallet: %v", err)
	}
	logger.Printf("Wallet: %s", signer.PublicKey())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Volatility registry: Redis when configured, in-memory otherwise.
	registry, err := createVolatilityRegistry(ctx, *redisAddr, logger)
	if err != nil {
		logger.Fatalf("Failed to create volatility registry: %v", err)
	}

	// Notifier: Telegram when configured, log fallback otherwise.
	notifier := createNotifier(logger)

	// Solana clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)

	swapOpts := swap.Options{
		RPC:        rpc,
		Aggregator: jupiter.NewClient(*jupiterURL),
		Native:     raydium.NewClient(*raydiumURL),
		Signer:     signer,
		Volatility: registry,
		Config:     swap.DefaultConfig(),
		Logger:     log.New(os.Stdout, "[swap] ", log.LstdFlags|log.Lshortfile),
	}
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Failed to create websocket client: %v", err)
		}
		defer ws.Close()
		swapOpts.WS = ws
	}
	executor := swap.NewExecutor(swapOpts)

	// Market data
	market := marketdata.NewHTTPClient(*marketDataURL, *marketDataKey)

	// Trading services
	buyService := trading.NewBuyService(trading.BuyOptions{
		Trades:    stores.trades,
		Blacklist: stores.blacklist,
		Market:    market,
		Swapper:   executor,
		RPC:       rpc,
		Wallet:    signer.PublicKey(),
		Notifier:  notifier,
		Config:    trading.BuyConfig{BuyAmountSOL: *buyAmount},
		Logger:    log.New(os.Stdout, "[buy] ", log.LstdFlags|log.Lshortfile),
	})
	sellService := trading.NewSellService(trading.SellOptions{
		Trades:     stores.trades,
		Blacklist:  stores.blacklist,
		Swapper:    executor,
		RPC:        rpc,
		Wallet:     signer.PublicKey(),
		Volatility: registry,
		Notifier:   notifier,
		Logger:     log.New(os.Stdout, "[sell] ", log.LstdFlags|log.Lshortfile),
	})

	// Scheduler feeds the monitor through a bounded queue.
	queue := scheduler.NewSuggestionQueue(0)
	analysisScheduler := scheduler.New(scheduler.Options{
		Market:    market,
		Evaluator: evaluation.NewEvaluator(market, log.New(os.Stdout, "[evaluation] ", log.LstdFlags|log.Lshortfile)),
		Criteria:  evaluation.DefaultCriteria(),
		Sink:      queue,
		Interval:  *analysisInterval,
		Logger:    log.New(os.Stdout, "[scheduler] ", log.LstdFlags|log.Lshortfile),
	})
	monitor := trading.NewMonitor(trading.MonitorOptions{
		Suggestions:  queue,
		Buyer:        buyService,
		Seller:       sellService,
		Trades:       stores.trades,
		PriceHistory: stores.priceHistory,
		Market:       market,
		Notifier:     notifier,
		Interval:     *monitorInterval,
		Logger:       log.New(os.Stdout, "[monitor] ", log.LstdFlags|log.Lshortfile),
	})

	agent := &Agent{
		scheduler: analysisScheduler,
		monitor:   monitor,
		queue:     queue,
		wallet:    signer.PublicKey(),
		startedAt: time.Now(),
		logger:    logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go agent.startHTTPServer(*httpAddr)

	// Run the agent
	err = agent.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Agent error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the env var value or the fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createStores creates the trade, blacklist and price-history stores and
// runs migrations on the persistent backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*agentStores, func(), error) {
	if useMemory {
		stores := &agentStores{
			trades:       memory.NewTradeStore(),
			blacklist:    memory.NewBlacklistStore(),
			priceHistory: memory.NewPriceHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (migration runner bootstraps the database and returns
	// the working connection)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &agentStores{
		trades:       pgstore.NewTradeStore(pool),
		blacklist:    pgstore.NewBlacklistStore(pool),
		priceHistory: chstore.NewPriceHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// createVolatilityRegistry picks Redis when an address is configured.
func createVolatilityRegistry(ctx context.Context, addr string, logger *log.Logger) (volatility.Registry, error) {
	if addr == "" {
		logger.Println("No redis address, using in-memory volatility registry")
		return volatility.NewMemoryRegistry(nil, nil), nil
	}
	return volatility.NewRedisRegistry(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
}

// createNotifier picks Telegram when both token and chat id are configured.
func createNotifier(logger *log.Logger) notify.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		logger.Println("Telegram not configured, notifications go to the log")
		return notify.NewLogNotifier(logger)
	}
	return notify.NewTelegram(token, chatID, notify.WithTelegramLogger(logger))
}

// Run starts the scheduler and monitor loops and blocks until the context
// is cancelled or one of them fails.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Println("Starting trading agent...")

	errCh := make(chan error, 2)

	go func() {
		err := a.scheduler.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("scheduler: %w", err)
		}
	}()

	go func() {
		err := a.monitor.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("monitor: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (a *Agent) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", a.handleStatus)

	a.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		a.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status             string               `json:"status"`
	Uptime             string               `json:"uptime"`
	StartedAt          time.Time            `json:"started_at"`
	Wallet             string               `json:"wallet"`
	PendingSuggestions int                  `json:"pending_suggestions"`
	Scheduler          scheduler.Stats      `json:"scheduler"`
	Monitor            trading.MonitorStats `json:"monitor"`
}

// handleStatus returns agent status as JSON.
func (a *Agent) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:             "running",
		Uptime:             time.Since(a.startedAt).String(),
		StartedAt:          a.startedAt,
		Wallet:             a.wallet,
		PendingSuggestions: a.queue.Len(),
		Scheduler:          a.scheduler.Stats(),
		Monitor:            a.monitor.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
