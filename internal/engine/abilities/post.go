package abilities

import (
	"github.com/KirkDiggler/rpg-combat/internal/engine/effects"
	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// PostProcess closes out the abilities of the source that expire this tick,
// queues their outcome payloads, the on-resolve effects of the ability just
// used and the effects of a used item, then instantiates the queue.
func (s *Service) PostProcess(pc *pipeline.Context, actors pipeline.Actors) error {
	source, _, err := participants(pc, actors)
	if err != nil {
		return err
	}

	var queue []combat.AppliedEffect
	queue = append(queue, expireAbilities(pc, source)...)

	if pc.Ability != nil && pc.AbilityUID != "" {
		queue = append(queue, pin(pc, source.CharID, pc.Ability.OnResolve)...)
	}
	if pc.Item != nil {
		queue = append(queue, pin(pc, source.CharID, pc.Item.Effects)...)
	}

	for _, applied := range queue {
		carrier, ok := actors.Get(applied.TargetID)
		if !ok || !carrier.Meta.IsAlive {
			continue
		}
		if _, err := s.factory.Instantiate(&effects.InstantiateInput{
			Context: pc,
			Applied: applied,
			Carrier: carrier,
		}); err != nil {
			return errors.Wrapf(err, "failed to apply %s to %s", applied.Descriptor.EffectID, applied.TargetID)
		}
	}
	return nil
}

// expireAbilities removes every ability of the source whose
// expire_at_exchange has been reached and returns the payload effects the
// recorded strikes unlock.
func expireAbilities(pc *pipeline.Context, source *combat.ActorSnapshot) []combat.AppliedEffect {
	counter := source.Meta.ExchangeCounter

	var (
		queue []combat.AppliedEffect
		kept  []*combat.ActiveAbility
	)
	for _, ab := range source.Statuses.Abilities {
		if ab.ExpireAtExchange > counter {
			kept = append(kept, ab)
			continue
		}
		source.RemoveTemp(ab.UID, ab.ModifiedKeys)
		for _, outcome := range combat.AllOutcomes {
			descs := ab.Payload[outcome]
			if len(descs) == 0 {
				continue
			}
			for _, strike := range pc.Result.Strikes {
				if !pipeline.StrikeFlag(strike, outcome) {
					continue
				}
				for _, d := range descs {
					queue = append(queue, pinOne(source.CharID, strike.TargetID, d))
				}
			}
		}
	}
	source.Statuses.Abilities = kept
	return queue
}

func pin(pc *pipeline.Context, sourceID string, descs []combat.EffectDescriptor) []combat.AppliedEffect {
	var out []combat.AppliedEffect
	for _, d := range descs {
		if d.On == combat.EffectOnSelf || len(pc.TargetIDs) == 0 {
			out = append(out, pinOne(sourceID, sourceID, d))
			continue
		}
		for _, target := range pc.TargetIDs {
			out = append(out, pinOne(sourceID, target, d))
		}
	}
	return out
}

func pinOne(sourceID, targetID string, d combat.EffectDescriptor) combat.AppliedEffect {
	if d.On == combat.EffectOnSelf {
		targetID = sourceID
	}
	return combat.AppliedEffect{Descriptor: d, SourceID: sourceID, TargetID: targetID}
}
