package solana

import (
	"context"
	"errors"
)

// ErrNoTokenAccount is returned when the owner holds no token account for
// the requested mint.
var ErrNoTokenAccount = errors.New("no token account for mint")

// RPCClient defines the Solana RPC HTTP interface used for trading.
type RPCClient interface {
	// GetBalance retrieves the SOL balance of a wallet in lamports.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetTokenAccountBalance retrieves the owner's balance for a mint.
	// Returns ErrNoTokenAccount when no token account exists.
	GetTokenAccountBalance(ctx context.Context, owner, mint string) (*TokenBalance, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTx string, opts *SendOpts) (string, error)

	// SimulateTransaction dry-runs a signed, base64-encoded transaction.
	SimulateTransaction(ctx context.Context, signedTx string) (*SimulationResult, error)

	// GetSignatureStatuses retrieves confirmation status for signatures.
	// The result slice is positionally aligned with the input; unknown
	// signatures yield nil entries.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}
