// Package calculator resolves a strike between two actors. It reads the
// snapshots and writes only into the pipeline context.
package calculator

import (
	"math"

	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/engine/stats"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// Config holds the dependencies for the calculator
type Config struct {
	Registry *gamedata.Registry
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	return vb.Build()
}

// Calculator computes outcomes and damage.
type Calculator struct {
	registry *gamedata.Registry
}

// New creates a calculator
func New(cfg *Config) (*Calculator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid calculator config")
	}
	return &Calculator{registry: cfg.Registry}, nil
}

// StrikeInput is one source->target calculation.
type StrikeInput struct {
	Context  *pipeline.Context
	Attacker *combat.ActorSnapshot
	Defender *combat.ActorSnapshot
}

// Strike resolves the attacker against one defender and records the outcome
// in the context. Outcome precedence is miss, parry, block, dodge, hit.
func (c *Calculator) Strike(in *StrikeInput) error {
	if in == nil || in.Context == nil || in.Attacker == nil || in.Defender == nil {
		return errors.InvalidArgument("context, attacker and defender are required")
	}
	pc := in.Context

	atk, err := c.sheet(pc, in.Attacker)
	if err != nil {
		return err
	}
	def, err := c.sheet(pc, in.Defender)
	if err != nil {
		return err
	}

	rule := c.rule(pc, in.Defender.CharID)
	roll := rng.ForStrike(pc.BattleID, pc.Seed, in.Attacker.Meta.ExchangeCounter, in.Attacker.CharID, in.Defender.CharID)

	strike := combat.Strike{TargetID: in.Defender.CharID}
	switch {
	case !rule.ForceHit && atk.Get(combat.StatAccuracy) < def.Get(combat.StatEvasion):
		strike.Outcome = combat.OutcomeMiss
	case !rule.NoParry && c.defends(roll, gamedata.FormulaParry, def.Get(combat.StatParry)):
		strike.Outcome = combat.OutcomeParried
	case !rule.NoBlock && c.defends(roll, gamedata.FormulaBlock, def.Get(combat.StatBlock)+def.Get(combat.StatShield)):
		strike.Outcome = combat.OutcomeBlocked
	case !rule.NoDodge && c.defends(roll, gamedata.FormulaDodge, def.Get(combat.StatDodge)):
		strike.Outcome = combat.OutcomeDodged
	default:
		strike.Outcome = combat.OutcomeHit
	}

	if strike.Outcome == combat.OutcomeHit || strike.Outcome == combat.OutcomeBlocked {
		if rule.ForceCrit {
			strike.IsCrit = true
		} else {
			chance := c.registry.GetFormula(gamedata.FormulaCrit).Chance(atk.Get(combat.StatCrit))
			// roll <= chance: the attacker takes ties.
			strike.IsCrit = chance > 0 && float64(roll.Percentile()) <= chance
		}
		strike.DamageFinal = damage(pc.OverrideDamage, roll, atk, def, strike, rule)
	}

	c.emit(pc, in.Attacker.CharID, strike)
	if strike.DamageFinal > 0 {
		pc.Result.ResourceChanges.Add(strike.TargetID, combat.ResourceHP, pipeline.LabelDamage, combat.Flat(-float64(strike.DamageFinal)))
	}
	pc.RecordStrike(strike)
	return nil
}

// defends rolls a defender check; the defender takes ties.
func (c *Calculator) defends(roll *rng.Stream, formula string, stat float64) bool {
	chance := c.registry.GetFormula(formula).Chance(stat)
	if chance <= 0 {
		return false
	}
	return float64(roll.Percentile()) <= chance
}

func (c *Calculator) sheet(pc *pipeline.Context, actor *combat.ActorSnapshot) (stats.Sheet, error) {
	out, err := stats.Resolve(&stats.ResolveInput{BattleID: pc.BattleID, Seed: pc.Seed, Actor: actor})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve stats for %s", actor.CharID)
	}
	pc.Sheets[actor.CharID] = out.Sheet
	return out.Sheet, nil
}

func (c *Calculator) rule(pc *pipeline.Context, targetID string) gamedata.TriggerRule {
	var rule gamedata.TriggerRule
	for _, name := range pc.ActiveTriggers(targetID) {
		if r, ok := c.registry.GetTriggerRule(name); ok {
			rule = rule.Merge(r)
		}
	}
	return rule
}

func damage(override *gamedata.DamageRange, roll *rng.Stream, atk, def stats.Sheet, strike combat.Strike, rule gamedata.TriggerRule) int {
	if override != nil {
		return roll.Between(override.Min, override.Max)
	}

	dmg := atk.Get(combat.StatPower)
	if strike.IsCrit {
		dmg *= 1 + atk.Get(combat.StatCritMult)
	}
	if !rule.IgnoreArmor {
		dmg -= def.Get(combat.StatArmorFlat)
		dmg *= 1 - def.Get(combat.StatArmorPct)/100
	}
	if strike.Outcome == combat.OutcomeBlocked {
		dmg *= 1 - def.Get(combat.StatBlockFraction)
	}
	if dmg <= 0 {
		return 0
	}
	return int(math.Floor(dmg))
}

var outcomeEvents = map[combat.Outcome]combat.EventType{
	combat.OutcomeHit:     combat.EventHit,
	combat.OutcomeMiss:    combat.EventMiss,
	combat.OutcomeBlocked: combat.EventBlock,
	combat.OutcomeParried: combat.EventParry,
	combat.OutcomeDodged:  combat.EventDodge,
}

func (c *Calculator) emit(pc *pipeline.Context, sourceID string, strike combat.Strike) {
	pc.Emit(combat.Event{
		Type:     outcomeEvents[strike.Outcome],
		SourceID: sourceID,
		TargetID: strike.TargetID,
		Value:    strike.DamageFinal,
	})
	if strike.IsCrit {
		pc.Emit(combat.Event{Type: combat.EventCrit, SourceID: sourceID, TargetID: strike.TargetID})
	}
}
