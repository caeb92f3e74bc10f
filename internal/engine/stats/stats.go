// Package stats collapses an actor's raw stat matrix into resolved values.
//
// A key is folded as base, then every source delta, then every temp delta,
// each layer in key order. Dice terms roll on a stream seeded per battle,
// tick, actor and key so a replay resolves the same numbers.
package stats

import (
	"math"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// Defaults for keys an actor does not carry.
var defaults = map[string]float64{
	combat.StatCritMult:      0.5,
	combat.StatBlockFraction: 0.5,
}

// Sheet is a set of resolved stat values.
type Sheet map[string]float64

// Get returns the value of key, falling back to the engine default.
func (s Sheet) Get(key string) float64 {
	return s.GetOr(key, defaults[key])
}

// GetOr returns the value of key or def when the actor does not carry it.
func (s Sheet) GetOr(key string, def float64) float64 {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Has reports whether key was resolved.
func (s Sheet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// ResolveInput names the actor and the seed material for dice terms.
type ResolveInput struct {
	BattleID string
	Seed     int64
	Actor    *combat.ActorSnapshot
}

// ResolveOutput carries the full sheet and the keys that were recomputed.
type ResolveOutput struct {
	Sheet      Sheet
	Recomputed []string
}

// Resolve returns every stat of the actor. Keys that are dirty, carry dice
// or have no cached value are recomputed; the rest come from Derived. The
// actor is not modified.
func Resolve(in *ResolveInput) (*ResolveOutput, error) {
	if in == nil || in.Actor == nil {
		return nil, errors.InvalidArgument("actor is required")
	}
	actor := in.Actor

	out := &ResolveOutput{Sheet: make(Sheet)}
	for _, key := range actor.StatKeys() {
		raw, _ := actor.Stat(key)
		cached, hasCached := actor.Derived[key]
		if hasCached && !actor.IsDirty(key) && !raw.HasDice() {
			out.Sheet[key] = cached
			continue
		}

		v, err := Fold(raw, rng.ForStat(in.BattleID, in.Seed, actor.Meta.ExchangeCounter, actor.CharID, key))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s for actor %s", key, actor.CharID)
		}
		out.Sheet[key] = v
		out.Recomputed = append(out.Recomputed, key)
	}
	return out, nil
}

// Fold evaluates one raw entry.
func Fold(raw *combat.RawStat, roller *rng.Stream) (float64, error) {
	acc := raw.Base
	var err error
	for _, k := range raw.SortedSourceKeys() {
		if acc, err = raw.Source[k].Apply(acc, roller); err != nil {
			return 0, errors.Wrapf(err, "source %s", k)
		}
	}
	for _, k := range raw.SortedTempKeys() {
		if acc, err = raw.Temp[k].Apply(acc, roller); err != nil {
			return 0, errors.Wrapf(err, "temp %s", k)
		}
	}
	if math.IsNaN(acc) || math.IsInf(acc, 0) {
		return 0, errors.Internalf("stat folded to %v", acc)
	}
	return acc, nil
}

// Refresh resolves the actor and stores the result in its Derived cache,
// clearing dirty_stats.
func Refresh(in *ResolveInput) (Sheet, error) {
	out, err := Resolve(in)
	if err != nil {
		return nil, err
	}
	in.Actor.CommitDerived(out.Sheet)
	return out.Sheet, nil
}

// Limits returns the pool bounds of an actor from a resolved sheet. An actor
// without hp_max or en_max is uncapped on that pool.
func Limits(s Sheet) (maxHP, maxEN int) {
	maxHP, maxEN = -1, -1
	if v, ok := s[combat.StatMaxHP]; ok {
		maxHP = int(math.Floor(v))
	}
	if v, ok := s[combat.StatMaxEN]; ok {
		maxEN = int(math.Floor(v))
	}
	return maxHP, maxEN
}
