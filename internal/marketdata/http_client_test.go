package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-meme-trader/internal/ratelimit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-key", WithLimiter(ratelimit.New(0)))
}

func TestRankedPools(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ranking/solana/hotpools", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		w.Write([]byte(`{
			"statusCode": 200,
			"data": [
				{"rank": 1, "creationTime": "2026-08-20T10:00:00Z",
				 "exchange": {"name": "Raydium"},
				 "mainToken": {"address": "MintA", "name": "Token A", "symbol": "TKA"}},
				{"rank": 2, "creationTime": "not-a-time",
				 "exchange": {"name": "Orca"},
				 "mainToken": {"address": "MintB", "name": "Token B", "symbol": "TKB"}}
			]
		}`))
	})

	pools, err := client.RankedPools(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, "MintA", pools[0].TokenAddress)
	assert.Equal(t, 1, pools[0].PoolRank)
	assert.Equal(t, "Raydium", pools[0].ExchangeName)
	require.NotNil(t, pools[0].PoolCreationTime)
	assert.Equal(t, 2026, pools[0].PoolCreationTime.Year())

	// Unparseable creation time stays nil, the candidate is still returned.
	assert.Nil(t, pools[1].PoolCreationTime)
}

func TestRankedPoolsLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 200, "data": [
			{"rank": 1, "mainToken": {"address": "A"}},
			{"rank": 2, "mainToken": {"address": "B"}},
			{"rank": 3, "mainToken": {"address": "C"}}
		]}`))
	})

	pools, err := client.RankedPools(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestPriceOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/solana/MintA/price", r.URL.Path)
		w.Write([]byte(`{"statusCode": 200, "data": {"price": 0.0042, "variation24h": -3.5}}`))
	})

	price, err := client.Price(context.Background(), "MintA")
	require.NoError(t, err)

	require.NotNil(t, price.Price)
	assert.InDelta(t, 0.0042, *price.Price, 1e-9)
	require.NotNil(t, price.Variation24h)
	assert.InDelta(t, -3.5, *price.Variation24h, 1e-9)

	// Missing windows are nil, not zero.
	assert.Nil(t, price.Variation5m)
	assert.Nil(t, price.Variation1h)
}

func TestSecurityScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 200, "data": {"dextScore": {"total": 91}}}`))
	})

	score, err := client.SecurityScore(context.Background(), "MintA")
	require.NoError(t, err)
	require.NotNil(t, score.Total)
	assert.Equal(t, 91.0, *score.Total)
}

func TestMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 200, "data": {
			"mcap": 1500000, "liquidity": 150000, "volume24h": 300000, "holders": 800
		}}`))
	})

	m, err := client.Metrics(context.Background(), "MintA")
	require.NoError(t, err)
	require.NotNil(t, m.MarketCap)
	assert.Equal(t, 1500000.0, *m.MarketCap)
	require.NotNil(t, m.Holders)
	assert.Equal(t, 800, *m.Holders)
	assert.Nil(t, m.Volume1h)
}

func TestGetErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "invalid key"}`))
	})

	_, err := client.TokenInfo(context.Background(), "MintA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGetAPIStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 429, "data": {}}`))
	})

	_, err := client.Price(context.Background(), "MintA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRateLimiterApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 200, "data": {"price": 1}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", WithLimiter(ratelimit.New(60*time.Millisecond)))
	ctx := context.Background()

	_, err := client.Price(ctx, "A")
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Price(ctx, "A")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
