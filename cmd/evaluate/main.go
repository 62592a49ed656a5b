// Package main evaluates a single token against the production criteria
// and prints the outcome. Useful for checking why the agent rejected (or
// would approve) a specific token.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/evaluation"
	"solana-meme-trader/internal/marketdata"
)

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags
	token := flag.String("token", "", "Token mint address to evaluate (required)")
	marketDataURL := flag.String("market-data-url", os.Getenv("MARKET_DATA_URL"), "Market-data API base URL")
	marketDataKey := flag.String("market-data-key", os.Getenv("MARKET_DATA_API_KEY"), "Market-data API key")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[evaluate] ", log.LstdFlags)

	// Validate required flags
	if *token == "" {
		logger.Fatal("--token is required")
	}
	if *marketDataURL == "" {
		logger.Fatal("--market-data-url is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	market := marketdata.NewHTTPClient(*marketDataURL, *marketDataKey)
	evaluator := evaluation.NewEvaluator(market, logger)

	candidate := domain.Candidate{
		TokenAddress: *token,
		Chain:        marketdata.DefaultChain,
	}

	outcome := evaluator.Evaluate(ctx, candidate, evaluation.DefaultCriteria())

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(outcome, "", "  ")
		fmt.Println(string(output))
	} else {
		printOutcome(outcome)
	}

	if !outcome.Approved {
		os.Exit(1)
	}
}

// printOutcome outputs a human-readable evaluation outcome.
func printOutcome(o *domain.EvaluationOutcome) {
	fmt.Println()
	fmt.Println("=== Evaluation Result ===")
	fmt.Printf("Token:     %s\n", o.TokenAddress)
	if o.Symbol != "" {
		fmt.Printf("Symbol:    %s\n", o.Symbol)
	}
	if o.Approved {
		fmt.Printf("Verdict:   APPROVED (score %.1f)\n", o.Score)
	} else {
		fmt.Printf("Verdict:   REJECTED (%s)\n", o.RejectionCategory)
		for _, reason := range o.RejectionReasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
	for _, warning := range o.Warnings {
		fmt.Printf("Warning:   %s\n", warning)
	}
	fmt.Println()

	fmt.Println("Snapshot:")
	printFloat("Price", o.Snapshot.Price, "%.8f")
	printFloat("Market Cap", o.Snapshot.MarketCap, "%.0f")
	printFloat("Liquidity", o.Snapshot.Liquidity, "%.0f")
	printFloat("Volume 24h", o.Snapshot.Volume24h, "%.0f")
	printFloat("Security", o.Snapshot.SecurityScore, "%.0f")
	printFloat("Age (hours)", o.Snapshot.AgeHours, "%.1f")
	printFloat("Change 5m %", o.Snapshot.PriceChange5m, "%.2f")
	printFloat("Change 1h %", o.Snapshot.PriceChange1h, "%.2f")
	printFloat("Change 24h %", o.Snapshot.PriceChange24h, "%.2f")
	if o.Snapshot.Holders != nil {
		fmt.Printf("  %-14s %d\n", "Holders:", *o.Snapshot.Holders)
	}
	if ratio := o.Snapshot.VolumeLiquidityRatio(); ratio != nil {
		fmt.Printf("  %-14s %.2f\n", "Vol/Liq:", *ratio)
	}
}

func printFloat(label string, v *float64, format string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-14s "+format+"\n", label+":", *v)
}
