// Package stub provides in-memory fakes of the Solana RPC interface for
// tests in higher layers.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-meme-trader/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. All fields are safe to
// mutate between calls; methods are mutex-guarded so concurrent use from a
// monitor loop under test is fine.
type RPCClient struct {
	mu sync.Mutex

	// Balances maps wallet pubkey to lamports.
	Balances map[string]uint64

	// TokenBalances maps owner+"/"+mint to balance. Missing entries yield
	// solana.ErrNoTokenAccount.
	TokenBalances map[string]*solana.TokenBalance

	// Blockhash returned by GetLatestBlockhash.
	Blockhash string

	// SendSignatures queues signatures returned by successive
	// SendTransaction calls; when exhausted, a deterministic signature is
	// generated.
	SendSignatures []string
	// SendErr, when set, fails every SendTransaction call.
	SendErr error

	// SimResult returned by SimulateTransaction; nil means success.
	SimResult *solana.SimulationResult
	// SimErr, when set, fails the simulation call itself.
	SimErr error

	// Statuses maps signature to its status for GetSignatureStatuses.
	Statuses map[string]*solana.SignatureStatus

	// Sent records every transaction submitted.
	Sent []string

	sendCount int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[string]uint64),
		TokenBalances: make(map[string]*solana.TokenBalance),
		Blockhash:     "StubBlockhash1111111111111111111111111111111",
		Statuses:      make(map[string]*solana.SignatureStatus),
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)

// SetTokenBalance registers a token balance for an owner and mint.
func (c *RPCClient) SetTokenBalance(owner, mint string, balance *solana.TokenBalance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenBalances[owner+"/"+mint] = balance
}

// GetBalance returns the configured lamport balance.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Balances[pubkey], nil
}

// GetTokenAccountBalance returns the configured token balance.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, owner, mint string) (*solana.TokenBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	balance, ok := c.TokenBalances[owner+"/"+mint]
	if !ok {
		return nil, solana.ErrNoTokenAccount
	}
	return balance, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &solana.LatestBlockhash{Blockhash: c.Blockhash, LastValidBlockHeight: 1000}, nil
}

// SendTransaction records the submission and returns the next queued
// signature.
func (c *RPCClient) SendTransaction(_ context.Context, signedTx string, _ *solana.SendOpts) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SendErr != nil {
		return "", c.SendErr
	}

	c.Sent = append(c.Sent, signedTx)
	c.sendCount++
	if len(c.SendSignatures) > 0 {
		sig := c.SendSignatures[0]
		c.SendSignatures = c.SendSignatures[1:]
		return sig, nil
	}
	return fmt.Sprintf("stubsig-%d", c.sendCount), nil
}

// SimulateTransaction returns the configured simulation result.
func (c *RPCClient) SimulateTransaction(_ context.Context, _ string) (*solana.SimulationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SimErr != nil {
		return nil, c.SimErr
	}
	if c.SimResult != nil {
		return c.SimResult, nil
	}
	return &solana.SimulationResult{}, nil
}

// GetSignatureStatuses returns configured statuses, positionally aligned.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		statuses[i] = c.Statuses[sig]
	}
	return statuses, nil
}
