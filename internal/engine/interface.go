// Package engine runs the per-action combat pipeline: ability
// pre-processing, the calculator and ability post-processing, followed by
// resource application, death handling and counter advancement.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/rpg-combat/internal/engine Engine

import (
	"context"
)

// Engine provides combat mechanics
type Engine interface {
	// Action resolution
	ResolveAction(ctx context.Context, input *ResolveActionInput) (*ResolveActionOutput, error)

	// Targeting and bot decisions
	ResolveTargets(ctx context.Context, input *ResolveTargetsInput) (*ResolveTargetsOutput, error)
	DecideExchange(ctx context.Context, input *DecideExchangeInput) (*DecideExchangeOutput, error)
}
