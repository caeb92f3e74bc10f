// Package builders provides test data builders for creating test fixtures
package builders

import (
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// ActorBuilder provides a fluent interface for building test ActorSnapshot instances
type ActorBuilder struct {
	actor *combat.ActorSnapshot
}

// NewActorBuilder creates a living 100 HP / 100 EN actor with 20 power
func NewActorBuilder(id string) *ActorBuilder {
	return &ActorBuilder{
		actor: &combat.ActorSnapshot{
			CharID: id,
			Meta:   combat.ActorMeta{HP: 100, EN: 100, IsAlive: true},
			Raw: combat.RawMatrix{
				Attributes: map[string]*combat.RawStat{
					combat.StatPower: {Base: 20},
					combat.StatMaxHP: {Base: 100},
					combat.StatMaxEN: {Base: 100},
				},
				Modifiers: map[string]*combat.RawStat{},
			},
		},
	}
}

// WithHP sets current HP; zero HP also marks the actor dead
func (b *ActorBuilder) WithHP(hp int) *ActorBuilder {
	b.actor.Meta.HP = hp
	b.actor.Meta.IsAlive = hp > 0
	return b
}

// WithEN sets current energy
func (b *ActorBuilder) WithEN(en int) *ActorBuilder {
	b.actor.Meta.EN = en
	return b
}

// WithPower sets the base power attribute
func (b *ActorBuilder) WithPower(power float64) *ActorBuilder {
	b.actor.Raw.Attributes[combat.StatPower].Base = power
	return b
}

// WithStat sets the base of any stat key
func (b *ActorBuilder) WithStat(key string, base float64) *ActorBuilder {
	b.actor.EnsureStat(key).Base = base
	return b
}

// WithRole sets the AI role
func (b *ActorBuilder) WithRole(role string) *ActorBuilder {
	b.actor.Role = role
	return b
}

// WithLoadout sets the ability loadout
func (b *ActorBuilder) WithLoadout(abilityIDs ...string) *ActorBuilder {
	b.actor.Loadout = abilityIDs
	return b
}

// WithTokens sets a token balance
func (b *ActorBuilder) WithTokens(kind string, n int) *ActorBuilder {
	if b.actor.Meta.Tokens == nil {
		b.actor.Meta.Tokens = make(map[string]int)
	}
	b.actor.Meta.Tokens[kind] = n
	return b
}

// WithFeints sets the feint arsenal and hand
func (b *ActorBuilder) WithFeints(arsenal []string, hand map[string]int) *ActorBuilder {
	b.actor.Meta.Feints = combat.FeintState{Arsenal: arsenal, Hand: hand}
	return b
}

// WithEffect attaches an active effect
func (b *ActorBuilder) WithEffect(e *combat.ActiveEffect) *ActorBuilder {
	b.actor.Statuses.Effects = append(b.actor.Statuses.Effects, e)
	return b
}

// WithExchangeCounter sets the actor's tick
func (b *ActorBuilder) WithExchangeCounter(n int64) *ActorBuilder {
	b.actor.Meta.ExchangeCounter = n
	return b
}

// Build returns the built snapshot
func (b *ActorBuilder) Build() *combat.ActorSnapshot {
	return b.actor
}
