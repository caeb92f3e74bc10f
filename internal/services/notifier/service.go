// Package notifier publishes battle outcomes to the rest of the process
// over the rpg-toolkit event bus.
package notifier

//go:generate mockgen -destination=mock/mock_service.go -package=notifiermock github.com/KirkDiggler/rpg-combat/internal/services/notifier Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// EventVictory is published once per finished battle. Its source is the
// battle and its target is the winning team (or the draw).
const EventVictory = "battle.victory"

// Service defines the outbound battle hooks
type Service interface {
	// OnVictory announces the winner of a battle
	OnVictory(ctx context.Context, input *OnVictoryInput) (*OnVictoryOutput, error)
}

// OnVictoryInput defines the request for announcing a winner
type OnVictoryInput struct {
	BattleID string
	Winner   string
}

// OnVictoryOutput defines the response for announcing a winner
type OnVictoryOutput struct{}

// Config holds the dependencies for the notifier
type Config struct {
	EventBus events.EventBus
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	return vb.Build()
}

// battleEntity and teamEntity let plain ids travel as core.Entity.
type battleEntity struct{ id string }

func (b *battleEntity) GetID() string   { return b.id }
func (b *battleEntity) GetType() string { return "battle" }

type teamEntity struct{ name string }

func (t *teamEntity) GetID() string   { return t.name }
func (t *teamEntity) GetType() string { return "team" }

var (
	_ core.Entity = (*battleEntity)(nil)
	_ core.Entity = (*teamEntity)(nil)
)

type service struct {
	bus events.EventBus
}

// NewService creates a notifier publishing on the given bus
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &service{bus: cfg.EventBus}, nil
}

func (s *service) OnVictory(ctx context.Context, input *OnVictoryInput) (*OnVictoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("battle_id", input.BattleID, vb)
	errors.ValidateRequired("winner", input.Winner, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	event := events.NewGameEvent(EventVictory, &battleEntity{id: input.BattleID}, &teamEntity{name: input.Winner})
	if err := s.bus.Publish(ctx, event); err != nil {
		return nil, errors.Wrapf(err, "failed to publish victory of battle %s", input.BattleID)
	}

	slog.InfoContext(ctx, "victory published",
		"battle_id", input.BattleID,
		"winner", input.Winner)
	return &OnVictoryOutput{}, nil
}

// Victory extracts the battle id and winner of a victory event
func Victory(event events.Event) (battleID, winner string, ok bool) {
	if event == nil || event.Type() != EventVictory || event.Source() == nil || event.Target() == nil {
		return "", "", false
	}
	return event.Source().GetID(), event.Target().GetID(), true
}
