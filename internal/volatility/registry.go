// Package volatility tracks tokens that have shown slippage trouble so the
// swap executor can widen tolerances up front.
package volatility

import "context"

// Registry classifies tokens by observed volatility. Extreme implies high.
type Registry interface {
	// IsHigh reports whether the token has been marked high volatility.
	IsHigh(ctx context.Context, token string) (bool, error)

	// IsExtreme reports whether the token has been marked extreme.
	IsExtreme(ctx context.Context, token string) (bool, error)

	// MarkHigh records the token as high volatility.
	MarkHigh(ctx context.Context, token string) error

	// MarkExtreme records the token as extreme volatility.
	MarkExtreme(ctx context.Context, token string) error
}
