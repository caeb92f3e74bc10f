package abilities

import (
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// RefillInput names the actor whose hand is topped up.
type RefillInput struct {
	BattleID string
	Seed     int64
	Actor    *combat.ActorSnapshot
}

// RefillHand draws feints from arsenal minus hand until the hand holds
// FeintHandSize cards. Each drawn card records its current tactical cost.
// The draw is seeded on the actor and its exchange counter. It returns the
// drawn ids.
func (s *Service) RefillHand(in *RefillInput) []string {
	actor := in.Actor
	hand := actor.Meta.Feints.Hand
	need := combat.FeintHandSize - len(hand)
	if need <= 0 {
		return nil
	}

	seen := make(map[string]bool, len(actor.Meta.Feints.Arsenal))
	var pool []string
	for _, id := range actor.Meta.Feints.Arsenal {
		if seen[id] {
			continue
		}
		if _, inHand := hand[id]; inHand {
			continue
		}
		if _, err := s.registry.GetFeint(id); err != nil {
			continue
		}
		seen[id] = true
		pool = append(pool, id)
	}
	if len(pool) == 0 {
		return nil
	}
	sort.Strings(pool)

	roller := rng.ForLabel(in.BattleID, in.Seed, actor.Meta.ExchangeCounter, actor.CharID, "feints")
	roller.Shuffle(pool)
	if need < len(pool) {
		pool = pool[:need]
	}

	if actor.Meta.Feints.Hand == nil {
		actor.Meta.Feints.Hand = make(map[string]int, combat.FeintHandSize)
	}
	for _, id := range pool {
		def, _ := s.registry.GetFeint(id)
		actor.Meta.Feints.Hand[id] = def.Cost.Tokens[combat.TokenTactical]
	}
	return pool
}
