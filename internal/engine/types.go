package engine

import (
	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// ResolveActionInput contains one action and the live state it runs against.
// Meta and the snapshots in Actors are mutated in place.
type ResolveActionInput struct {
	Meta   *combat.BattleMeta
	Action *combat.CombatAction
	Actors pipeline.Actors
}

// ResolveActionOutput contains the log entry and what the action touched
type ResolveActionOutput struct {
	Entry *combat.LogEntry
	// Participants are the actors whose exchange counter advanced.
	Participants []string
	// Touched are the actors whose snapshot changed, sorted.
	Touched []string
	// Deaths are actors that reached 0 HP during the action.
	Deaths []string
}

// ResolveTargetsInput contains a raw target descriptor to resolve
type ResolveTargetsInput struct {
	Meta       *combat.BattleMeta
	SourceID   string
	Descriptor string
	HP         func(actorID string) int
}

// ResolveTargetsOutput contains concrete living target ids
type ResolveTargetsOutput struct {
	TargetIDs []string
}

// DecideExchangeInput contains the bot and the enemy it answers
type DecideExchangeInput struct {
	Bot   *combat.ActorSnapshot
	Enemy *combat.ActorSnapshot
}

// DecideExchangeOutput contains the chosen exchange payload
type DecideExchangeOutput struct {
	Payload combat.ExchangePayload
}
