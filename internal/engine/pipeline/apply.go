package pipeline

import (
	"math"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// Resource change labels.
const (
	LabelCost   = "cost"
	LabelDamage = "dmg"
	LabelHeal   = "heal"
	LabelDoT    = "dot"
)

var labelRank = map[string]int{
	LabelCost:   0,
	LabelDamage: 1,
	LabelHeal:   2,
}

// OrderedLabels sorts labels cost, dmg, heal, then the rest by name.
func OrderedLabels(byLabel map[string]combat.Expr) []string {
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, iok := labelRank[labels[i]]
		rj, jok := labelRank[labels[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return labels[i] < labels[j]
		}
	})
	return labels
}

// NetDelta folds one resource's changes: flat deltas in label order, then
// multipliers scale the net delta. Dice must be resolved beforehand.
func NetDelta(byLabel map[string]combat.Expr) (int, error) {
	labels := OrderedLabels(byLabel)

	net := 0.0
	for _, label := range labels {
		e := byLabel[label]
		switch e.Kind {
		case combat.ExprFlat:
			net += e.FlatValue()
		case combat.ExprMult:
		default:
			return 0, errors.Internalf("resource change %s=%s is not resolved", label, e.String())
		}
	}
	for _, label := range labels {
		if e := byLabel[label]; e.Kind == combat.ExprMult {
			net *= e.Value
		}
	}
	return int(math.Round(net)), nil
}

// Limits are the upper bounds of an actor's pools. A negative bound leaves
// the pool uncapped.
type Limits struct {
	MaxHP int
	MaxEN int
}

// ApplyOutput reports what changed on one actor.
type ApplyOutput struct {
	Deltas map[string]int
	Died   bool
}

// Apply writes an actor's resource changes. HP and energy are clamped to
// [0, max]; tokens never go below zero. HP reaching zero kills the actor.
func Apply(actor *combat.ActorSnapshot, changes map[string]map[string]combat.Expr, limits Limits) (*ApplyOutput, error) {
	out := &ApplyOutput{Deltas: make(map[string]int, len(changes))}

	resources := make([]string, 0, len(changes))
	for r := range changes {
		resources = append(resources, r)
	}
	sort.Strings(resources)

	for _, resource := range resources {
		delta, err := NetDelta(changes[resource])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to apply %s to actor %s", resource, actor.CharID)
		}

		switch resource {
		case combat.ResourceHP:
			before := actor.Meta.HP
			actor.Meta.HP = clamp(before+delta, 0, limits.MaxHP)
			out.Deltas[resource] = actor.Meta.HP - before
		case combat.ResourceEN:
			before := actor.Meta.EN
			actor.Meta.EN = clamp(before+delta, 0, limits.MaxEN)
			out.Deltas[resource] = actor.Meta.EN - before
		default:
			kind, ok := tokenKind(resource)
			if !ok {
				return nil, errors.Internalf("unknown resource %s on actor %s", resource, actor.CharID)
			}
			if actor.Meta.Tokens == nil {
				actor.Meta.Tokens = make(map[string]int)
			}
			before := actor.Meta.Tokens[kind]
			after := before + delta
			if after < 0 {
				after = 0
			}
			actor.Meta.Tokens[kind] = after
			out.Deltas[resource] = after - before
		}
	}

	if actor.Meta.HP == 0 && actor.Meta.IsAlive {
		actor.Meta.IsAlive = false
		out.Died = true
	}
	return out, nil
}

func tokenKind(resource string) (string, bool) {
	const prefix = "token:"
	if len(resource) > len(prefix) && resource[:len(prefix)] == prefix {
		return resource[len(prefix):], true
	}
	return "", false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= lo && v > hi {
		return hi
	}
	return v
}
