// Package raydium implements the native pool-route client used as the last
// swap fallback when aggregator routing keeps failing.
package raydium

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

// DefaultTimeout bounds a single compute or build call.
const DefaultTimeout = 15 * time.Second

// ComputeRequest describes a swap computation against Raydium pools only.
type ComputeRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // raw base units of the input mint
	SlippageBps int
}

// Compute is a priced Raydium route. Raw is echoed back verbatim to the
// transaction-build endpoint.
type Compute struct {
	InputMint  string
	OutputMint string
	InAmount   uint64
	OutAmount  uint64

	Raw json.RawMessage
}

// Client talks to a Raydium transaction API.
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

// NewClient creates a new Raydium client.
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

// envelope is the Raydium API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// ComputeSwap prices a swap restricted to Raydium pools.
func (c *Client) ComputeSwap(ctx context.Context, req ComputeRequest) (*Compute, error) {
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", strconv.FormatUint(req.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	q.Set("txVersion", "V0")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/compute/swap-base-in?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("compute swap %s->%s: %w", req.InputMint, req.OutputMint, err)
	}

	var data struct {
		InputMint    string `json:"inputMint"`
		OutputMint   string `json:"outputMint"`
		InputAmount  string `json:"inputAmount"`
		OutputAmount string `json:"outputAmount"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode compute: %w", err)
	}

	compute := &Compute{
		InputMint:  data.InputMint,
		OutputMint: data.OutputMint,
		Raw:        body,
	}
	if compute.InAmount, err = strconv.ParseUint(data.InputAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("parse inputAmount %q: %w", data.InputAmount, err)
	}
	if compute.OutAmount, err = strconv.ParseUint(data.OutputAmount, 10, 64); err != nil {
		return nil, fmt.Errorf("parse outputAmount %q: %w", data.OutputAmount, err)
	}
	return compute, nil
}

// BuildSwap requests an unsigned, base64-encoded transaction for a computed
// route. SOL legs are wrapped and unwrapped automatically.
func (c *Client) BuildSwap(ctx context.Context, compute *Compute, wallet string) (string, error) {
	payload := map[string]interface{}{
		"swapResponse": json.RawMessage(buildSwapResponse(compute.Raw)),
		"txVersion":    "V0",
		"wallet":       wallet,
		"wrapSol":      true,
		"unwrapSol":    true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/swap-base-in", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respData, err := c.do(httpReq)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}

	var txs []struct {
		Transaction string `json:"transaction"`
	}
	if err := json.Unmarshal(respData, &txs); err != nil {
		return "", fmt.Errorf("decode transactions: %w", err)
	}
	if len(txs) == 0 || txs[0].Transaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return txs[0].Transaction, nil
}

// buildSwapResponse re-wraps the compute data in the envelope shape the
// build endpoint expects.
func buildSwapResponse(computeData json.RawMessage) []byte {
	wrapped, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    computeData,
	})
	return wrapped
}

// do executes the request and unwraps the response envelope.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
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

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("api error: %s", env.Msg)
	}
	return env.Data, nil
}
