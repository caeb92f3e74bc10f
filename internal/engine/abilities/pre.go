package abilities

import (
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine/effects"
	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/rng"
)

// target behaviour -> trigger set on strikes against the carrier
var targetBehaviorTriggers = map[string]string{
	combat.BehaviorCanDodge: "no_dodge",
	combat.BehaviorCanParry: "no_parry",
	combat.BehaviorCanBlock: "no_block",
}

// PreProcess prepares the context before the calculator runs. Skips are
// recorded on the context; an error means the action could not be evaluated
// at all.
func (s *Service) PreProcess(pc *pipeline.Context, actors pipeline.Actors) error {
	source, targets, err := participants(pc, actors)
	if err != nil {
		return err
	}

	effects.Expire(pc, source)
	for _, t := range targets {
		if t.CharID != source.CharID {
			effects.Expire(pc, t)
		}
	}

	abilitiesAllowed, err := s.statusPass(pc, source, targets)
	if err != nil {
		return err
	}
	if pc.Result.SkipReason != "" {
		return nil
	}

	return s.activate(pc, source, abilitiesAllowed)
}

func (s *Service) statusPass(pc *pipeline.Context, source *combat.ActorSnapshot, targets []*combat.ActorSnapshot) (bool, error) {
	abilitiesAllowed := true
	for _, e := range source.Statuses.Effects {
		if e.Control != nil {
			if canAct, ok := e.Control.SourceBehavior[combat.BehaviorCanAct]; ok && !canAct {
				pc.Skip(combat.SkipControlled)
			}
			if canUse, ok := e.Control.SourceBehavior[combat.BehaviorCanUseAbilities]; ok && !canUse {
				abilitiesAllowed = false
			}
		}
		if err := s.tick(pc, source, e); err != nil {
			return false, err
		}
	}

	for _, t := range targets {
		for _, e := range t.Statuses.Effects {
			if e.Control == nil {
				continue
			}
			for behavior, trigger := range targetBehaviorTriggers {
				if allowed, ok := e.Control.TargetBehavior[behavior]; ok && !allowed {
					pc.SetTargetTrigger(t.CharID, trigger, true)
				}
			}
		}
	}
	return abilitiesAllowed, nil
}

func (s *Service) tick(pc *pipeline.Context, carrier *combat.ActorSnapshot, e *combat.ActiveEffect) error {
	if len(e.Tick) == 0 {
		return nil
	}
	resources := make([]string, 0, len(e.Tick))
	for r := range e.Tick {
		resources = append(resources, r)
	}
	sort.Strings(resources)

	roller := rng.ForLabel(pc.BattleID, pc.Seed, carrier.Meta.ExchangeCounter, carrier.CharID, "dot:"+e.UID)
	for _, resource := range resources {
		delta, err := e.Tick[resource].Resolve(roller)
		if err != nil {
			return errors.Wrapf(err, "failed to tick %s on %s", e.EffectID, carrier.CharID)
		}
		pc.Result.ResourceChanges.Add(carrier.CharID, resource, pipeline.LabelDoT, delta)
	}
	return nil
}

func (s *Service) activate(pc *pipeline.Context, source *combat.ActorSnapshot, abilitiesAllowed bool) error {
	var (
		def      *gamedata.AbilityDefinition
		feintID  string
		err      error
		resolved bool
	)

	switch p := pc.Move.Payload.(type) {
	case combat.ItemPayload:
		return s.useItem(pc, p)
	case combat.InstantPayload:
		def, err = s.registry.GetAbility(p.AbilityID)
		resolved = true
	case combat.ExchangePayload:
		switch {
		case p.AbilityID != "":
			def, err = s.registry.GetAbility(p.AbilityID)
			resolved = true
		case p.FeintID != "":
			def, err = s.registry.GetFeint(p.FeintID)
			feintID = p.FeintID
			resolved = true
		}
	}
	if !resolved {
		return nil
	}
	if err != nil {
		if errors.IsNotFound(err) {
			pc.Skip(combat.SkipUnknownDefinition)
			return nil
		}
		return err
	}
	if !abilitiesAllowed {
		pc.Skip(combat.SkipControlled)
		return nil
	}

	cost := def.Cost
	if feintID != "" {
		handCost, inHand := source.Meta.Feints.Hand[feintID]
		if !inHand {
			pc.Skip(combat.SkipNoResource)
			return nil
		}
		cost = feintCost(def.Cost, handCost)
	}
	if !CanAfford(source, cost) {
		pc.Skip(combat.SkipNoResource)
		return nil
	}

	charge(pc, source.CharID, cost)
	if feintID != "" {
		delete(source.Meta.Feints.Hand, feintID)
	}
	return s.register(pc, source, def, feintID != "")
}

func (s *Service) useItem(pc *pipeline.Context, p combat.ItemPayload) error {
	item, err := s.registry.GetItem(p.ItemID)
	if err != nil {
		if errors.IsNotFound(err) {
			pc.Skip(combat.SkipUnknownDefinition)
			return nil
		}
		return err
	}
	if err := s.applyPreset(pc, item.Preset); err != nil {
		return err
	}
	pc.Item = item
	return nil
}

// feintCost replaces the tactical part of a feint's cost with what the hand
// recorded when the feint was drawn.
func feintCost(base gamedata.Cost, handCost int) gamedata.Cost {
	cost := gamedata.Cost{EN: base.EN, HP: base.HP, Tokens: map[string]int{combat.TokenTactical: handCost}}
	for kind, n := range base.Tokens {
		if kind != combat.TokenTactical {
			cost.Tokens[kind] = n
		}
	}
	return cost
}

func charge(pc *pipeline.Context, actorID string, cost gamedata.Cost) {
	rc := pc.Result.ResourceChanges
	if cost.EN > 0 {
		rc.Add(actorID, combat.ResourceEN, pipeline.LabelCost, combat.Flat(-float64(cost.EN)))
	}
	if cost.HP > 0 {
		rc.Add(actorID, combat.ResourceHP, pipeline.LabelCost, combat.Flat(-float64(cost.HP)))
	}
	for kind, n := range cost.Tokens {
		if n > 0 {
			rc.Add(actorID, combat.TokenResource(kind), pipeline.LabelCost, combat.Flat(-float64(n)))
		}
	}
}

func (s *Service) register(pc *pipeline.Context, source *combat.ActorSnapshot, def *gamedata.AbilityDefinition, isFeint bool) error {
	ab := &combat.ActiveAbility{
		UID:              pc.UIDs.Generate(),
		AbilityID:        def.ID,
		SourceID:         source.CharID,
		ExpireAtExchange: source.Meta.ExchangeCounter + def.Duration,
		IsFeint:          isFeint,
	}

	keys := make([]string, 0, len(def.RawMutations))
	for key := range def.RawMutations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		source.SetTemp(key, ab.UID, def.RawMutations[key])
	}
	ab.ModifiedKeys = keys

	if len(def.Payload) > 0 {
		ab.Payload = make(map[combat.Outcome][]combat.EffectDescriptor, len(def.Payload))
		for outcome, descs := range def.Payload {
			ab.Payload[outcome] = append([]combat.EffectDescriptor(nil), descs...)
		}
	}
	source.Statuses.Abilities = append(source.Statuses.Abilities, ab)

	if err := s.applyPreset(pc, def.PipelineMutations.Preset); err != nil {
		return err
	}
	for _, path := range sortedFlagPaths(def.PipelineMutations.Flags) {
		pc.SetFlag(path, def.PipelineMutations.Flags[path])
	}
	for _, name := range def.Triggers {
		pc.Triggers[name] = true
	}
	if def.OverrideDamage != nil {
		r := *def.OverrideDamage
		pc.OverrideDamage = &r
	}

	pc.Ability = def
	pc.AbilityUID = ab.UID
	return nil
}

func (s *Service) applyPreset(pc *pipeline.Context, name string) error {
	if name == "" {
		return nil
	}
	flags, err := s.registry.GetPreset(name)
	if err != nil {
		return errors.Wrapf(err, "preset %s", name)
	}
	for _, path := range sortedFlagPaths(flags) {
		pc.SetFlag(path, flags[path])
	}
	return nil
}

func sortedFlagPaths(flags map[string]bool) []string {
	paths := make([]string, 0, len(flags))
	for p := range flags {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
