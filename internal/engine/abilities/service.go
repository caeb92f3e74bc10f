// Package abilities runs the pre- and post-calculation stages of the action
// pipeline: effect expiry, control and damage-over-time statuses, ability,
// feint and item activation, payload resolution and effect instantiation.
package abilities

import (
	"github.com/KirkDiggler/rpg-combat/internal/engine/effects"
	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
)

// Config holds the dependencies for the ability service
type Config struct {
	Registry *gamedata.Registry
	Factory  *effects.Factory
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Factory == nil {
		vb.RequiredField("Factory")
	}
	return vb.Build()
}

// Service is the ability service.
type Service struct {
	registry *gamedata.Registry
	factory  *effects.Factory
}

// New creates an ability service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ability service config")
	}
	return &Service{registry: cfg.Registry, factory: cfg.Factory}, nil
}

// CanAfford reports whether the actor can pay cost. HP costs must leave the
// actor alive.
func CanAfford(actor *combat.ActorSnapshot, cost gamedata.Cost) bool {
	if actor.Meta.EN < cost.EN {
		return false
	}
	if cost.HP > 0 && actor.Meta.HP <= cost.HP {
		return false
	}
	for kind, n := range cost.Tokens {
		if actor.Meta.Tokens[kind] < n {
			return false
		}
	}
	return true
}

func participants(pc *pipeline.Context, actors pipeline.Actors) (*combat.ActorSnapshot, []*combat.ActorSnapshot, error) {
	source, ok := actors.Get(pc.SourceID)
	if !ok {
		return nil, nil, errors.NotFoundf("actor %s is not loaded", pc.SourceID)
	}
	targets := make([]*combat.ActorSnapshot, 0, len(pc.TargetIDs))
	for _, id := range pc.TargetIDs {
		if t, ok := actors.Get(id); ok {
			targets = append(targets, t)
		}
	}
	return source, targets, nil
}
