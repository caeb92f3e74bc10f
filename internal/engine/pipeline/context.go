// Package pipeline holds the per-action context threaded through ability
// pre-processing, the calculator and ability post-processing, and applies the
// resource changes it accumulates.
package pipeline

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-combat/internal/engine/stats"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
)

// Phase flags.
const (
	PhaseRunCalculator = "run_calculator"
	PhaseApplyAbility  = "apply_ability"
)

// Result accumulates everything one direction of an action produced.
type Result struct {
	Events          []combat.Event
	AppliedEffects  []combat.AppliedEffect
	ResourceChanges combat.ResourceChanges
	DamageFinal     int
	IsHit           bool
	IsCrit          bool
	IsBlocked       bool
	IsParried       bool
	IsDodged        bool
	IsMiss          bool
	SkipReason      combat.SkipReason
	Strikes         []combat.Strike
}

// Flag reads an outcome flag.
func (r *Result) Flag(o combat.Outcome) bool {
	switch o {
	case combat.OutcomeHit:
		return r.IsHit
	case combat.OutcomeCrit:
		return r.IsCrit
	case combat.OutcomeBlocked:
		return r.IsBlocked
	case combat.OutcomeParried:
		return r.IsParried
	case combat.OutcomeDodged:
		return r.IsDodged
	case combat.OutcomeMiss:
		return r.IsMiss
	default:
		return false
	}
}

// StrikeFlag reads an outcome flag of one strike.
func StrikeFlag(s combat.Strike, o combat.Outcome) bool {
	if o == combat.OutcomeCrit {
		return s.IsCrit
	}
	return s.Outcome == o
}

// Context is the transient record of one action direction.
type Context struct {
	BattleID  string
	Seed      int64
	Action    *combat.CombatAction
	Move      *combat.CombatMove
	SourceID  string
	TargetIDs []string

	Phases         map[string]bool
	Triggers       map[string]bool
	TargetTriggers map[string]map[string]bool
	OverrideDamage *gamedata.DamageRange

	// Ability, Feint and Item are set by pre-processing once the move's
	// definition resolved and was paid for. AbilityUID is the owner uid of
	// the registered ActiveAbility.
	Ability    *gamedata.AbilityDefinition
	AbilityUID string
	Item       *gamedata.ItemDefinition

	// Sheets holds the stats the calculator resolved, by actor.
	Sheets map[string]stats.Sheet

	Result Result

	// UIDs mints owner uids for abilities and effects created by this
	// direction.
	UIDs idgen.Generator
}

// NewInput builds a Context.
type NewInput struct {
	BattleID  string
	Seed      int64
	Action    *combat.CombatAction
	Move      *combat.CombatMove
	TargetIDs []string
	UIDs      idgen.Generator
}

// New returns a context with default phases and an empty result.
func New(in *NewInput) *Context {
	return &Context{
		BattleID:       in.BattleID,
		Seed:           in.Seed,
		Action:         in.Action,
		Move:           in.Move,
		SourceID:       in.Move.CharID,
		TargetIDs:      in.TargetIDs,
		Phases:         map[string]bool{PhaseRunCalculator: true, PhaseApplyAbility: true},
		Triggers:       make(map[string]bool),
		TargetTriggers: make(map[string]map[string]bool),
		Sheets:         make(map[string]stats.Sheet),
		Result:         Result{ResourceChanges: combat.ResourceChanges{}},
		UIDs:           in.UIDs,
	}
}

// Phase reports whether a stage runs.
func (c *Context) Phase(name string) bool {
	return c.Phases[name]
}

// SetFlag writes a "phases.x" or "triggers.x" path. Unknown prefixes are
// ignored; the registry rejects them at load.
func (c *Context) SetFlag(path string, value bool) {
	switch {
	case strings.HasPrefix(path, gamedata.PhasePrefix):
		c.Phases[strings.TrimPrefix(path, gamedata.PhasePrefix)] = value
	case strings.HasPrefix(path, gamedata.TriggerPrefix):
		c.Triggers[strings.TrimPrefix(path, gamedata.TriggerPrefix)] = value
	}
}

// SetTargetTrigger sets a trigger for strikes against one target only.
func (c *Context) SetTargetTrigger(targetID, name string, value bool) {
	m, ok := c.TargetTriggers[targetID]
	if !ok {
		m = make(map[string]bool)
		c.TargetTriggers[targetID] = m
	}
	m[name] = value
}

// ActiveTriggers returns the triggers in force against targetID, sorted.
func (c *Context) ActiveTriggers(targetID string) []string {
	set := make(map[string]bool)
	for name, on := range c.Triggers {
		if on {
			set[name] = true
		}
	}
	for name, on := range c.TargetTriggers[targetID] {
		if on {
			set[name] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Skip stops the calculator and records the first reason given.
func (c *Context) Skip(reason combat.SkipReason) {
	c.Phases[PhaseRunCalculator] = false
	if c.Result.SkipReason == "" {
		c.Result.SkipReason = reason
	}
}

// Emit appends an event.
func (c *Context) Emit(ev combat.Event) {
	c.Result.Events = append(c.Result.Events, ev)
}

// PrimaryTarget is the first target, empty when there is none.
func (c *Context) PrimaryTarget() string {
	if len(c.TargetIDs) == 0 {
		return ""
	}
	return c.TargetIDs[0]
}

// RecordStrike stores a strike outcome. The first strike also sets the
// top-level outcome flags.
func (c *Context) RecordStrike(s combat.Strike) {
	if len(c.Result.Strikes) == 0 {
		c.Result.IsHit = s.Outcome == combat.OutcomeHit
		c.Result.IsBlocked = s.Outcome == combat.OutcomeBlocked
		c.Result.IsParried = s.Outcome == combat.OutcomeParried
		c.Result.IsDodged = s.Outcome == combat.OutcomeDodged
		c.Result.IsMiss = s.Outcome == combat.OutcomeMiss
		c.Result.IsCrit = s.IsCrit
	}
	c.Result.Strikes = append(c.Result.Strikes, s)
	c.Result.DamageFinal += s.DamageFinal
}

// Actors gives the pipeline access to the snapshots of an action.
type Actors map[string]*combat.ActorSnapshot

// Get returns the snapshot of id.
func (a Actors) Get(id string) (*combat.ActorSnapshot, bool) {
	actor, ok := a[id]
	return actor, ok && actor != nil
}

// HP returns the current HP of id, 0 when it is not loaded.
func (a Actors) HP(id string) int {
	if actor, ok := a.Get(id); ok {
		return actor.Meta.HP
	}
	return 0
}
