package trading

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/marketdata"
	"solana-meme-trader/internal/swap"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// fakeSwapper confirms every swap unless execErr is set.
type fakeSwapper struct {
	reqs    []swap.Request
	execErr error

	// amountOutRaw is the token amount every buy swap yields.
	amountOutRaw uint64
}

func (f *fakeSwapper) Execute(_ context.Context, req swap.Request) (*domain.ConfirmedSwap, error) {
	f.reqs = append(f.reqs, req)
	if f.execErr != nil {
		return nil, f.execErr
	}
	out := f.amountOutRaw
	if out == 0 {
		out = req.AmountRaw
	}
	return &domain.ConfirmedSwap{
		TxHash:       fmt.Sprintf("tx-%d", len(f.reqs)),
		Strategy:     domain.SwapStrategyStandard,
		InputMint:    req.InputMint,
		OutputMint:   req.OutputMint,
		AmountInRaw:  req.AmountRaw,
		AmountOutRaw: out,
		SlippageBps:  500,
	}, nil
}

// priceMarket serves per-token prices and fixed token identity data.
type priceMarket struct {
	prices   map[string]float64
	priceErr error
	infoErr  error
}

func newPriceMarket() *priceMarket {
	return &priceMarket{prices: make(map[string]float64)}
}

func (m *priceMarket) RankedPools(_ context.Context, _ int) ([]domain.Candidate, error) {
	return nil, nil
}

func (m *priceMarket) TokenInfo(_ context.Context, address string) (*marketdata.TokenInfo, error) {
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	return &marketdata.TokenInfo{Address: address, Name: "Meme Token", Symbol: "MEME", Decimals: iptr(6)}, nil
}

func (m *priceMarket) Price(_ context.Context, address string) (*marketdata.PriceInfo, error) {
	if m.priceErr != nil {
		return nil, m.priceErr
	}
	p, ok := m.prices[address]
	if !ok {
		return &marketdata.PriceInfo{}, nil
	}
	return &marketdata.PriceInfo{Price: fptr(p)}, nil
}

func (m *priceMarket) SecurityScore(_ context.Context, _ string) (*marketdata.ScoreInfo, error) {
	return &marketdata.ScoreInfo{Total: fptr(90)}, nil
}

func (m *priceMarket) Metrics(_ context.Context, _ string) (*marketdata.TokenMetrics, error) {
	return &marketdata.TokenMetrics{}, nil
}

var _ marketdata.Client = (*priceMarket)(nil)

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(logWriter{t}, "", 0)
}

type logWriter struct{ t *testing.T }

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testSuggestion(token string, score float64) domain.Suggestion {
	return domain.Suggestion{
		ID:           token + "-1",
		TokenAddress: token,
		Symbol:       "MEME",
		Score:        score,
		CreatedAt:    time.Now(),
	}
}
