package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/ratelimit"
)

// Default configuration values.
const (
	DefaultTimeout      = 15 * time.Second
	DefaultCallInterval = 2 * time.Second
	DefaultChain        = "solana"
)

// HTTPClient implements Client against a DEXTools-style REST API.
// All calls pass through a shared rate limiter: the upstream enforces a
// global minimum inter-request delay per API key.
type HTTPClient struct {
	baseURL string
	apiKey  string
	chain   string
	client  *http.Client
	limiter *ratelimit.Limiter
}

// Option configures HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithLimiter sets a custom rate limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *HTTPClient) {
		c.limiter = l
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithChain sets the chain segment used in API paths.
func WithChain(chain string) Option {
	return func(c *HTTPClient) {
		c.chain = chain
	}
}

// NewHTTPClient creates a new market-data HTTP client.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		chain:   DefaultChain,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: ratelimit.New(DefaultCallInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// apiEnvelope is the common response wrapper: payload under "data" with a
// status code alongside.
type apiEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// get performs a rate-limited GET and unmarshals the data payload.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.StatusCode != 0 && env.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", env.StatusCode)
	}
	if env.Data == nil {
		return fmt.Errorf("empty data payload")
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// rankedPoolsResult is the raw payload of the hot-pools ranking endpoint.
type rankedPoolsResult []struct {
	Rank         int    `json:"rank"`
	CreationTime string `json:"creationTime"`
	Exchange     struct {
		Name string `json:"name"`
	} `json:"exchange"`
	MainToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"mainToken"`
}

// RankedPools fetches the current ranked-pool feed, best rank first.
func (c *HTTPClient) RankedPools(ctx context.Context, limit int) ([]domain.Candidate, error) {
	var result rankedPoolsResult
	if err := c.get(ctx, fmt.Sprintf("/ranking/%s/hotpools", c.chain), nil, &result); err != nil {
		return nil, fmt.Errorf("ranked pools: %w", err)
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	candidates := make([]domain.Candidate, 0, len(result))
	for _, p := range result {
		c2 := domain.Candidate{
			TokenAddress: p.MainToken.Address,
			Symbol:       p.MainToken.Symbol,
			Name:         p.MainToken.Name,
			Chain:        c.chain,
			PoolRank:     p.Rank,
			ExchangeName: p.Exchange.Name,
		}
		if ts, err := time.Parse(time.RFC3339, p.CreationTime); err == nil {
			c2.PoolCreationTime = &ts
		}
		candidates = append(candidates, c2)
	}
	return candidates, nil
}

// tokenInfoResult is the raw payload of the token endpoint.
type tokenInfoResult struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     *int   `json:"decimals"`
	CreationTime string `json:"creationTime"`
}

// TokenInfo fetches basic token identity data.
func (c *HTTPClient) TokenInfo(ctx context.Context, address string) (*TokenInfo, error) {
	var result tokenInfoResult
	if err := c.get(ctx, fmt.Sprintf("/token/%s/%s", c.chain, address), nil, &result); err != nil {
		return nil, fmt.Errorf("token info %s: %w", address, err)
	}

	info := &TokenInfo{
		Address:  result.Address,
		Name:     result.Name,
		Symbol:   result.Symbol,
		Decimals: result.Decimals,
	}
	if ts, err := time.Parse(time.RFC3339, result.CreationTime); err == nil {
		info.CreationTime = &ts
	}
	return info, nil
}

// priceResult is the raw payload of the price endpoint.
type priceResult struct {
	Price        *float64 `json:"price"`
	Variation5m  *float64 `json:"variation5m"`
	Variation1h  *float64 `json:"variation1h"`
	Variation24h *float64 `json:"variation24h"`
}

// Price fetches the current price and its short-window variations.
func (c *HTTPClient) Price(ctx context.Context, address string) (*PriceInfo, error) {
	var result priceResult
	if err := c.get(ctx, fmt.Sprintf("/token/%s/%s/price", c.chain, address), nil, &result); err != nil {
		return nil, fmt.Errorf("price %s: %w", address, err)
	}
	return &PriceInfo{
		Price:        result.Price,
		Variation5m:  result.Variation5m,
		Variation1h:  result.Variation1h,
		Variation24h: result.Variation24h,
	}, nil
}

// scoreResult is the raw payload of the score endpoint.
type scoreResult struct {
	DextScore struct {
		Total *float64 `json:"total"`
	} `json:"dextScore"`
}

// SecurityScore fetches the third-party security score (0-100).
func (c *HTTPClient) SecurityScore(ctx context.Context, address string) (*ScoreInfo, error) {
	var result scoreResult
	if err := c.get(ctx, fmt.Sprintf("/token/%s/%s/score", c.chain, address), nil, &result); err != nil {
		return nil, fmt.Errorf("security score %s: %w", address, err)
	}
	return &ScoreInfo{Total: result.DextScore.Total}, nil
}

// metricsResult is the raw payload of the token info/metrics endpoint.
type metricsResult struct {
	MCap      *float64 `json:"mcap"`
	Liquidity *float64 `json:"liquidity"`
	Volume24h *float64 `json:"volume24h"`
	Volume1h  *float64 `json:"volume1h"`
	Holders   *int     `json:"holders"`
}

// Metrics fetches market cap, liquidity, volume and holder metrics.
func (c *HTTPClient) Metrics(ctx context.Context, address string) (*TokenMetrics, error) {
	var result metricsResult
	if err := c.get(ctx, fmt.Sprintf("/token/%s/%s/info", c.chain, address), nil, &result); err != nil {
		return nil, fmt.Errorf("metrics %s: %w", address, err)
	}
	return &TokenMetrics{
		MarketCap: result.MCap,
		Liquidity: result.Liquidity,
		Volume24h: result.Volume24h,
		Volume1h:  result.Volume1h,
		Holders:   result.Holders,
	}, nil
}
