// Package effects instantiates effect definitions onto a carrier.
package effects

import (
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// Config holds the dependencies for the factory
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

// Factory turns applied effect descriptors into live records.
type Factory struct {
	registry *gamedata.Registry
}

// New creates a factory
func New(cfg *Config) (*Factory, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid effect factory config")
	}
	return &Factory{registry: cfg.Registry}, nil
}

// InstantiateInput pins an applied effect to its carrier.
type InstantiateInput struct {
	Context *pipeline.Context
	Applied combat.AppliedEffect
	Carrier *combat.ActorSnapshot
}

// InstantiateOutput reports what the factory produced. Effect is nil for
// effects that resolve immediately (restore_hp).
type InstantiateOutput struct {
	Effect *combat.ActiveEffect
	Heal   int
}

// Instantiate applies one effect. restore_hp adds a heal to the context's
// resource changes; every other kind attaches an ActiveEffect and its temp
// mutations to the carrier. Re-applying an effect from the same source
// refreshes it instead of stacking.
func (f *Factory) Instantiate(in *InstantiateInput) (*InstantiateOutput, error) {
	if in == nil || in.Context == nil || in.Carrier == nil {
		return nil, errors.InvalidArgument("context and carrier are required")
	}
	pc := in.Context
	desc := in.Applied.Descriptor

	def, err := f.registry.GetEffect(desc.EffectID)
	if err != nil {
		return nil, err
	}

	if def.Kind == gamedata.EffectKindRestoreHP {
		return f.restore(pc, in.Applied, def, in.Carrier)
	}

	carrier := in.Carrier
	Remove(carrier, func(e *combat.ActiveEffect) bool {
		return e.EffectID == def.ID && e.SourceID == in.Applied.SourceID
	})

	duration := def.Duration
	if desc.Duration > 0 {
		duration = int64(desc.Duration)
	}

	effect := &combat.ActiveEffect{
		UID:              pc.UIDs.Generate(),
		EffectID:         def.ID,
		SourceID:         in.Applied.SourceID,
		ExpireAtExchange: carrier.Meta.ExchangeCounter + duration,
	}
	for key, expr := range def.Mutations {
		carrier.SetTemp(key, effect.UID, expr)
		effect.ModifiedKeys = append(effect.ModifiedKeys, key)
	}
	sort.Strings(effect.ModifiedKeys)

	if def.Control != nil {
		effect.Control = &combat.Control{
			SourceBehavior: copyBehavior(def.Control.SourceBehavior),
			TargetBehavior: copyBehavior(def.Control.TargetBehavior),
		}
	}
	if len(def.Tick) > 0 {
		effect.Tick = make(map[string]combat.Expr, len(def.Tick))
		for resource, e := range def.Tick {
			effect.Tick[resource] = e
		}
	}

	carrier.Statuses.Effects = append(carrier.Statuses.Effects, effect)
	pc.Result.AppliedEffects = append(pc.Result.AppliedEffects, in.Applied)
	pc.Emit(combat.Event{
		Type:     combat.EventApplyEffect,
		SourceID: in.Applied.SourceID,
		TargetID: carrier.CharID,
		Detail:   def.ID,
	})
	return &InstantiateOutput{Effect: effect}, nil
}

func (f *Factory) restore(pc *pipeline.Context, applied combat.AppliedEffect, def *gamedata.EffectDefinition, carrier *combat.ActorSnapshot) (*InstantiateOutput, error) {
	value := def.Value
	if applied.Descriptor.Value != nil {
		value = applied.Descriptor.Value
	}
	if value == nil {
		return nil, errors.InvalidArgumentf("effect %s has no value", def.ID)
	}

	roller := rng.ForLabel(pc.BattleID, pc.Seed, carrier.Meta.ExchangeCounter, carrier.CharID, "heal:"+def.ID)
	resolved, err := value.Resolve(roller)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", def.ID)
	}
	if resolved.Kind != combat.ExprFlat {
		return nil, errors.InvalidArgumentf("effect %s value must be additive", def.ID)
	}

	heal := int(resolved.FlatValue())
	pc.Result.ResourceChanges.Add(carrier.CharID, combat.ResourceHP, pipeline.LabelHeal, resolved)
	pc.Result.AppliedEffects = append(pc.Result.AppliedEffects, applied)
	pc.Emit(combat.Event{
		Type:     combat.EventApplyEffect,
		SourceID: applied.SourceID,
		TargetID: carrier.CharID,
		Value:    heal,
		Detail:   def.ID,
	})
	return &InstantiateOutput{Heal: heal}, nil
}

// Remove drops every effect matching pred together with its temp entries.
// It returns the removed records.
func Remove(carrier *combat.ActorSnapshot, pred func(*combat.ActiveEffect) bool) []*combat.ActiveEffect {
	var removed []*combat.ActiveEffect
	kept := carrier.Statuses.Effects[:0]
	for _, e := range carrier.Statuses.Effects {
		if pred(e) {
			carrier.RemoveTemp(e.UID, e.ModifiedKeys)
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	carrier.Statuses.Effects = kept
	if len(kept) == 0 {
		carrier.Statuses.Effects = nil
	}
	return removed
}

// Expire garbage-collects effects whose expire_at_exchange is behind the
// carrier's counter and emits an EXPIRE event per record.
func Expire(pc *pipeline.Context, carrier *combat.ActorSnapshot) []*combat.ActiveEffect {
	counter := carrier.Meta.ExchangeCounter
	removed := Remove(carrier, func(e *combat.ActiveEffect) bool {
		return e.ExpireAtExchange < counter
	})
	for _, e := range removed {
		pc.Emit(combat.Event{Type: combat.EventExpire, TargetID: carrier.CharID, Detail: e.EffectID})
	}
	return removed
}

func copyBehavior(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
