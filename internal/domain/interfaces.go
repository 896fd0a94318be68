package domain

import "context"

// PositionSource provides the current broker position snapshot.
// Implementations must return the full list or an error; per-record
// field problems degrade to nil fields, never to a failed call.
type PositionSource interface {
	GetPositions(ctx context.Context) ([]Position, error)
}

// ChainSource provides the option chain for one underlying.
// A fetch failure is terminal for that underlying within a pass; no
// retries are expected of implementations.
type ChainSource interface {
	GetOptionChain(ctx context.Context, underlying string) ([]OptionCandidate, error)
}

// AccountSource exposes the deployable cash balance used to seed
// budget plans.
type AccountSource interface {
	GetCash(ctx context.Context) (float64, error)
}
