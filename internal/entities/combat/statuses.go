package combat

// Outcome names a resolution flag a payload can react to.
type Outcome string

const (
	OutcomeHit     Outcome = "is_hit"
	OutcomeCrit    Outcome = "is_crit"
	OutcomeBlocked Outcome = "is_blocked"
	OutcomeParried Outcome = "is_parried"
	OutcomeDodged  Outcome = "is_dodged"
	OutcomeMiss    Outcome = "is_miss"
)

// AllOutcomes lists outcomes in payload evaluation order.
var AllOutcomes = []Outcome{OutcomeHit, OutcomeCrit, OutcomeBlocked, OutcomeParried, OutcomeDodged, OutcomeMiss}

// Effect target selectors of an EffectDescriptor.
const (
	EffectOnTarget = "target"
	EffectOnSelf   = "self"
)

// EffectDescriptor asks for an effect to be instantiated.
type EffectDescriptor struct {
	EffectID string `json:"effect_id" yaml:"effect_id"`
	On       string `json:"on,omitempty" yaml:"on"`
	Duration int    `json:"duration,omitempty" yaml:"duration"`
	Value    *Expr  `json:"value,omitempty" yaml:"value"`
}

// AppliedEffect is a descriptor pinned to a concrete carrier.
type AppliedEffect struct {
	Descriptor EffectDescriptor `json:"descriptor"`
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
}

// Control behaviour keys.
const (
	BehaviorCanAct          = "can_act"
	BehaviorCanUseAbilities = "can_use_abilities"
	BehaviorCanDodge        = "can_dodge"
	BehaviorCanParry        = "can_parry"
	BehaviorCanBlock        = "can_block"
)

// Control describes how an effect bends the pipeline of its carrier.
// SourceBehavior applies when the carrier acts; TargetBehavior when the
// carrier is struck.
type Control struct {
	SourceBehavior map[string]bool `json:"source_behavior,omitempty" yaml:"source_behavior"`
	TargetBehavior map[string]bool `json:"target_behavior,omitempty" yaml:"target_behavior"`
}

// ActiveAbility records that an ability's mutations and payload are live.
type ActiveAbility struct {
	UID              string                         `json:"uid"`
	AbilityID        string                         `json:"ability_id"`
	SourceID         string                         `json:"source_id"`
	ExpireAtExchange int64                          `json:"expire_at_exchange"`
	ModifiedKeys     []string                       `json:"modified_keys,omitempty"`
	Payload          map[Outcome][]EffectDescriptor `json:"payload,omitempty"`
	IsFeint          bool                           `json:"is_feint,omitempty"`
}

// ActiveEffect is a durable status such as a DoT, debuff or control.
type ActiveEffect struct {
	UID              string          `json:"uid"`
	EffectID         string          `json:"effect_id"`
	SourceID         string          `json:"source_id,omitempty"`
	ExpireAtExchange int64           `json:"expire_at_exchange"`
	ModifiedKeys     []string        `json:"modified_keys,omitempty"`
	Control          *Control        `json:"control,omitempty"`
	Tick             map[string]Expr `json:"tick,omitempty"`
}
