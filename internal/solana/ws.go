package solana

import "context"

// SignatureResult is the one-shot notification delivered when a subscribed
// signature reaches confirmed commitment.
type SignatureResult struct {
	Slot int64
	Err  interface{} // nil when the transaction succeeded
}

// WSClient defines the Solana WebSocket interface used for transaction
// confirmation.
type WSClient interface {
	// SubscribeSignature subscribes to the confirmation of one signature.
	// The returned channel delivers exactly one result and is then closed;
	// the node removes the subscription automatically after notifying.
	SubscribeSignature(ctx context.Context, signature string) (<-chan SignatureResult, error)

	// Close closes the WebSocket connection.
	Close() error
}
