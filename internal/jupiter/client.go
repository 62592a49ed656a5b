// Package jupiter implements a client for an aggregator v6-style quote and
// swap API.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single quote or swap-build call.
const DefaultTimeout = 15 * time.Second

// WSOLMint is the wrapped SOL mint used as the input side of buys and the
// output side of sells.
const WSOLMint = "So11111111111111111111111111111111111111112"

// QuoteRequest describes one quote.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // raw base units of the input mint
	SlippageBps int

	// OnlyDirectRoutes restricts routing to single-hop routes.
	OnlyDirectRoutes bool
	// MaxAccounts caps transaction account usage; 0 means no cap.
	MaxAccounts int
}

// Quote is a priced route. Raw carries the untouched response body because
// the swap-build endpoint requires the full quote echoed back.
type Quote struct {
	InputMint            string
	OutputMint           string
	InAmount             uint64
	OutAmount            uint64
	OtherAmountThreshold uint64
	PriceImpactPct       float64

	Raw json.RawMessage
}

// Client fetches quotes and builds swap transactions.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new aggregator client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse mirrors the wire shape; amounts arrive as decimal strings.
type quoteResponse struct {
	InputMint            string `json:"inputMint"`
	OutputMint           string `json:"outputMint"`
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	PriceImpactPct       string `json:"priceImpactPct"`
}

// Quote fetches a priced route for the request.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", strconv.FormatUint(req.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	if req.OnlyDirectRoutes {
		q.Set("onlyDirectRoutes", "true")
	}
	if req.MaxAccounts > 0 {
		q.Set("maxAccounts", strconv.Itoa(req.MaxAccounts))
	}

	body, err := c.get(ctx, "/quote?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("quote %s->%s: %w", req.InputMint, req.OutputMint, err)
	}

	var raw quoteResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}

	quote := &Quote{
		InputMint:  raw.InputMint,
		OutputMint: raw.OutputMint,
		Raw:        body,
	}
	if quote.InAmount, err = strconv.ParseUint(raw.InAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("parse inAmount %q: %w", raw.InAmount, err)
	}
	if quote.OutAmount, err = strconv.ParseUint(raw.OutAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("parse outAmount %q: %w", raw.OutAmount, err)
	}
	if raw.OtherAmountThreshold != "" {
		if quote.OtherAmountThreshold, err = strconv.ParseUint(raw.OtherAmountThreshold, 10, 64); err != nil {
			return nil, fmt.Errorf("parse otherAmountThreshold %q: %w", raw.OtherAmountThreshold, err)
		}
	}
	if raw.PriceImpactPct != "" {
		if quote.PriceImpactPct, err = strconv.ParseFloat(raw.PriceImpactPct, 64); err != nil {
			return nil, fmt.Errorf("parse priceImpactPct %q: %w", raw.PriceImpactPct, err)
		}
	}
	return quote, nil
}

// BuildSwap requests an unsigned, base64-encoded swap transaction for a
// quote.
func (c *Client) BuildSwap(ctx context.Context, quote *Quote, userPubkey string) (string, error) {
	payload := map[string]interface{}{
		"quoteResponse":    quote.Raw,
		"userPublicKey":    userPubkey,
		"wrapAndUnwrapSol": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("build swap status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if result.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return result.SwapTransaction, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
