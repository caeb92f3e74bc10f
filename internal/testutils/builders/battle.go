package builders

import (
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// BattleBuilder provides a fluent interface for building test BattleMeta instances
type BattleBuilder struct {
	meta *combat.BattleMeta
}

// NewBattleBuilder creates an active battle with no teams
func NewBattleBuilder(battleID string) *BattleBuilder {
	return &BattleBuilder{
		meta: &combat.BattleMeta{
			BattleID:   battleID,
			Seed:       42,
			Teams:      make(map[string][]string),
			ActorsInfo: make(map[string]combat.ActorKind),
			DeadActors: []string{},
			Active:     true,
		},
	}
}

// WithSeed sets the RNG seed
func (b *BattleBuilder) WithSeed(seed int64) *BattleBuilder {
	b.meta.Seed = seed
	return b
}

// WithPlayer adds a player to a team
func (b *BattleBuilder) WithPlayer(team, actorID string) *BattleBuilder {
	return b.with(team, actorID, combat.ActorKindPlayer)
}

// WithBot adds an AI actor to a team
func (b *BattleBuilder) WithBot(team, actorID string) *BattleBuilder {
	return b.with(team, actorID, combat.ActorKindAI)
}

func (b *BattleBuilder) with(team, actorID string, kind combat.ActorKind) *BattleBuilder {
	members := append(b.meta.Teams[team], actorID)
	sort.Strings(members)
	b.meta.Teams[team] = members
	b.meta.ActorsInfo[actorID] = kind
	return b
}

// WithDead marks actors dead
func (b *BattleBuilder) WithDead(actorIDs ...string) *BattleBuilder {
	for _, id := range actorIDs {
		b.meta.MarkDead(id)
	}
	return b
}

// Build returns the built meta
func (b *BattleBuilder) Build() *combat.BattleMeta {
	return b.meta
}
