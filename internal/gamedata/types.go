package gamedata

import (
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
)

// Cost is what an ability or feint debits from its user.
type Cost struct {
	EN     int            `yaml:"en"`
	HP     int            `yaml:"hp"`
	Tokens map[string]int `yaml:"tokens"`
}

// PipelineMutations adjust pipeline flags while an ability resolves. Preset
// names an entry of pipeline_presets; Flags are applied after it.
type PipelineMutations struct {
	Preset string          `yaml:"preset"`
	Flags  map[string]bool `yaml:"flags"`
}

// DamageRange replaces computed damage with a uniform sample of [Min, Max].
type DamageRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// AbilityDefinition describes an ability. Feints share the shape; their
// token cost is fixed into the hand when drawn.
type AbilityDefinition struct {
	ID                string                                       `yaml:"-"`
	Name              string                                       `yaml:"name"`
	Tags              []string                                     `yaml:"tags"`
	Cost              Cost                                         `yaml:"cost"`
	Duration          int64                                        `yaml:"duration"`
	RawMutations      map[string]combat.Expr                       `yaml:"raw_mutations"`
	PipelineMutations PipelineMutations                            `yaml:"pipeline_mutations"`
	Triggers          []string                                     `yaml:"triggers"`
	OverrideDamage    *DamageRange                                 `yaml:"override_damage"`
	Payload           map[combat.Outcome][]combat.EffectDescriptor `yaml:"payload"`
	OnResolve         []combat.EffectDescriptor                    `yaml:"on_resolve"`
}

// HasTag reports whether the ability carries tag.
func (a *AbilityDefinition) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Effect kinds.
const (
	EffectKindStat      = "stat"
	EffectKindControl   = "control"
	EffectKindDoT       = "dot"
	EffectKindRestoreHP = "restore_hp"
)

// EffectDefinition describes an effect the factory can instantiate.
type EffectDefinition struct {
	ID        string                 `yaml:"-"`
	Kind      string                 `yaml:"kind"`
	Duration  int64                  `yaml:"duration"`
	Mutations map[string]combat.Expr `yaml:"mutations"`
	Control   *combat.Control        `yaml:"control"`
	Tick      map[string]combat.Expr `yaml:"tick"`
	Value     *combat.Expr           `yaml:"value"`
}

// ItemDefinition describes a usable item.
type ItemDefinition struct {
	ID      string                    `yaml:"-"`
	Name    string                    `yaml:"name"`
	Preset  string                    `yaml:"preset"`
	Effects []combat.EffectDescriptor `yaml:"effects"`
}

// SkillFormula turns a resolved stat into a percent chance:
// clamp(Base + PerPoint*stat, Min, Max).
type SkillFormula struct {
	Base     float64 `yaml:"base"`
	PerPoint float64 `yaml:"per_point"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// Chance evaluates the formula for a stat value.
func (f SkillFormula) Chance(stat float64) float64 {
	v := f.Base + f.PerPoint*stat
	if v < f.Min {
		v = f.Min
	}
	if f.Max > 0 && v > f.Max {
		v = f.Max
	}
	return v
}

// Formula names consulted by the calculator.
const (
	FormulaDodge = "dodge_chance"
	FormulaParry = "parry_chance"
	FormulaBlock = "block_chance"
	FormulaCrit  = "crit_chance"
)

// TriggerRule is what an active trigger does to a strike.
type TriggerRule struct {
	ForceHit    bool `yaml:"force_hit"`
	ForceCrit   bool `yaml:"force_crit"`
	NoDodge     bool `yaml:"no_dodge"`
	NoParry     bool `yaml:"no_parry"`
	NoBlock     bool `yaml:"no_block"`
	IgnoreArmor bool `yaml:"ignore_armor"`
}

// Merge ORs other into r.
func (r TriggerRule) Merge(other TriggerRule) TriggerRule {
	return TriggerRule{
		ForceHit:    r.ForceHit || other.ForceHit,
		ForceCrit:   r.ForceCrit || other.ForceCrit,
		NoDodge:     r.NoDodge || other.NoDodge,
		NoParry:     r.NoParry || other.NoParry,
		NoBlock:     r.NoBlock || other.NoBlock,
		IgnoreArmor: r.IgnoreArmor || other.IgnoreArmor,
	}
}

// Definitions is the on-disk shape of the registry.
type Definitions struct {
	Abilities       map[string]*AbilityDefinition `yaml:"abilities"`
	Feints          map[string]*AbilityDefinition `yaml:"feints"`
	Effects         map[string]*EffectDefinition  `yaml:"effects"`
	Items           map[string]*ItemDefinition    `yaml:"items"`
	SkillFormulas   map[string]SkillFormula       `yaml:"skill_formulas"`
	PipelinePresets map[string]map[string]bool    `yaml:"pipeline_presets"`
	TriggerRules    map[string]TriggerRule        `yaml:"trigger_rules"`
}
