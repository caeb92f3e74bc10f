// Package targets turns raw target descriptors into concrete living actor
// ids.
package targets

import (
	"sort"
	"strconv"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// cleaveExtra is how many random enemies a cleave adds to its primary.
const cleaveExtra = 2

// ResolveInput describes one resolution.
type ResolveInput struct {
	Meta       *combat.BattleMeta
	SourceID   string
	Descriptor string
	// HP reports current HP for lowest-HP descriptors.
	HP func(actorID string) int
}

// Resolve returns the concrete targets of a descriptor. Dead actors are never
// returned; an empty result means there is no valid target.
func Resolve(in *ResolveInput) []string {
	meta := in.Meta
	switch in.Descriptor {
	case combat.TargetSelf:
		if meta.IsLiving(in.SourceID) {
			return []string{in.SourceID}
		}
		return nil
	case combat.TargetRandomEnemy:
		enemies := living(meta, meta.Enemies(in.SourceID))
		if len(enemies) == 0 {
			return nil
		}
		return []string{enemies[stream(in).Intn(len(enemies))]}
	case combat.TargetLowestHPEnemy:
		return lowest(in, meta.Enemies(in.SourceID))
	case combat.TargetLowestHPAlly:
		return lowest(in, meta.Allies(in.SourceID))
	case combat.TargetCleave:
		primary := lowest(in, meta.Enemies(in.SourceID))
		if len(primary) == 0 {
			return nil
		}
		var rest []string
		for _, id := range living(meta, meta.Enemies(in.SourceID)) {
			if id != primary[0] {
				rest = append(rest, id)
			}
		}
		stream(in).Shuffle(rest)
		if len(rest) > cleaveExtra {
			rest = rest[:cleaveExtra]
		}
		return append(primary, rest...)
	case combat.TargetAllEnemies:
		return living(meta, meta.Enemies(in.SourceID))
	case combat.TargetAllAllies:
		return living(meta, meta.Allies(in.SourceID))
	default:
		if _, onTeam := meta.TeamOf(in.Descriptor); onTeam && meta.IsLiving(in.Descriptor) {
			return []string{in.Descriptor}
		}
		return nil
	}
}

func stream(in *ResolveInput) *rng.Stream {
	return rng.New(in.Meta.BattleID, strconv.FormatInt(in.Meta.Seed, 10),
		strconv.FormatInt(in.Meta.ExchangeCounter, 10), in.SourceID, "target", in.Descriptor)
}

func living(meta *combat.BattleMeta, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if meta.IsLiving(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func lowest(in *ResolveInput, ids []string) []string {
	var (
		best   string
		bestHP int
	)
	for _, id := range living(in.Meta, ids) {
		hp := 0
		if in.HP != nil {
			hp = in.HP(id)
		}
		if best == "" || hp < bestHP {
			best, bestHP = id, hp
		}
	}
	if best == "" {
		return nil
	}
	return []string{best}
}
