package engine

import (
	"context"
	"sort"
	"strconv"

	"github.com/KirkDiggler/rpg-combat/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-combat/internal/engine/ai"
	"github.com/KirkDiggler/rpg-combat/internal/engine/calculator"
	"github.com/KirkDiggler/rpg-combat/internal/engine/effects"
	"github.com/KirkDiggler/rpg-combat/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-combat/internal/engine/stats"
	"github.com/KirkDiggler/rpg-combat/internal/engine/targets"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
)

type engine struct {
	abilities  *abilities.Service
	calculator *calculator.Calculator
	ai         *ai.Processor
}

// Config holds the dependencies for the engine
type Config struct {
	Registry *gamedata.Registry
}

// Validate ensures all required dependencies are provided
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	return vb.Build()
}

// New creates an engine over the registry
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory, err := effects.New(&effects.Config{Registry: cfg.Registry})
	if err != nil {
		return nil, err
	}
	svc, err := abilities.New(&abilities.Config{Registry: cfg.Registry, Factory: factory})
	if err != nil {
		return nil, err
	}
	calc, err := calculator.New(&calculator.Config{Registry: cfg.Registry})
	if err != nil {
		return nil, err
	}
	proc, err := ai.New(&ai.Config{Registry: cfg.Registry})
	if err != nil {
		return nil, err
	}

	return &engine{abilities: svc, calculator: calc, ai: proc}, nil
}

// direction is one source's half of an action.
type direction struct {
	pc     *pipeline.Context
	source *combat.ActorSnapshot
}

func (e *engine) ResolveAction(ctx context.Context, input *ResolveActionInput) (*ResolveActionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input == nil || input.Meta == nil || input.Action == nil || input.Action.Move == nil {
		return nil, errors.InvalidArgument("meta and action are required")
	}
	meta := input.Meta
	action := input.Action

	var dirs []*direction
	var entries []*combat.LogEntry
	for _, move := range action.Moves() {
		d, entry, err := e.open(meta, action, move, input.Actors)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if d != nil {
			dirs = append(dirs, d)
		}
	}

	// Paired directions run stage by stage so neither strike sees the
	// other's outcome.
	for _, d := range dirs {
		if err := e.abilities.PreProcess(d.pc, input.Actors); err != nil {
			return nil, errors.Wrapf(err, "pre-process failed for %s", d.source.CharID)
		}
	}
	for _, d := range dirs {
		if err := e.calculate(d, input.Actors); err != nil {
			return nil, err
		}
	}
	for _, d := range dirs {
		if err := e.abilities.PostProcess(d.pc, input.Actors); err != nil {
			return nil, errors.Wrapf(err, "post-process failed for %s", d.source.CharID)
		}
	}

	changes := combat.ResourceChanges{}
	for _, d := range dirs {
		changes.Merge(d.pc.Result.ResourceChanges)
	}
	deaths, err := e.apply(meta, changes, input.Actors)
	if err != nil {
		return nil, err
	}

	// fill entries from their contexts
	dirIdx := 0
	for i, move := range action.Moves() {
		if dirIdx < len(dirs) && dirs[dirIdx].source.CharID == move.CharID {
			fillEntry(entries[i], dirs[dirIdx].pc)
			dirIdx++
		}
	}
	entry := entries[0]
	if len(entries) > 1 {
		entry.Partner = entries[1]
	}
	for _, id := range deaths {
		entry.Events = append(entry.Events, combat.Event{Type: combat.EventDeath, TargetID: id})
	}

	participants := participantsOf(meta, entries)
	for _, id := range participants {
		if a, ok := input.Actors.Get(id); ok {
			a.Meta.ExchangeCounter++
		}
	}
	meta.ExchangeCounter++

	touched := make(map[string]bool)
	for _, id := range participants {
		touched[id] = true
	}
	for _, id := range changes.Actors() {
		touched[id] = true
	}
	for _, d := range dirs {
		for _, applied := range d.pc.Result.AppliedEffects {
			touched[applied.TargetID] = true
		}
		if len(d.source.Meta.Feints.Arsenal) > 0 {
			e.abilities.RefillHand(&abilities.RefillInput{BattleID: meta.BattleID, Seed: meta.Seed, Actor: d.source})
		}
	}

	out := &ResolveActionOutput{Entry: entry, Participants: participants, Deaths: deaths}
	for id := range touched {
		out.Touched = append(out.Touched, id)
	}
	sort.Strings(out.Touched)

	for _, id := range out.Touched {
		a, ok := input.Actors.Get(id)
		if !ok {
			continue
		}
		if _, err := stats.Refresh(&stats.ResolveInput{BattleID: meta.BattleID, Seed: meta.Seed, Actor: a}); err != nil {
			return nil, errors.Wrapf(err, "failed to refresh stats of %s", id)
		}
	}
	return out, nil
}

// open builds the context of one move, or records why it cannot run.
func (e *engine) open(meta *combat.BattleMeta, action *combat.CombatAction, move *combat.CombatMove, actors pipeline.Actors) (*direction, *combat.LogEntry, error) {
	entry := &combat.LogEntry{
		ActionID:        action.ActionID,
		ExchangeCounter: meta.ExchangeCounter,
		SourceID:        move.CharID,
		ActionType:      action.Type,
		IsForced:        action.IsForced,
		Events:          []combat.Event{},
	}

	source, ok := actors.Get(move.CharID)
	if !ok || !source.Meta.IsAlive || !meta.IsLiving(move.CharID) {
		entry.SkipReason = combat.SkipActorDead
		entry.TargetIDs = []string{}
		return nil, entry, nil
	}

	candidates := move.Targets
	if len(candidates) == 0 && move.Payload != nil {
		raw := move.Payload.Target()
		if combat.IsTargetDescriptor(raw) {
			candidates = targets.Resolve(&targets.ResolveInput{
				Meta:       meta,
				SourceID:   move.CharID,
				Descriptor: raw,
				HP:         actors.HP,
			})
		} else {
			candidates = []string{raw}
		}
	}
	targetIDs := []string{}
	for _, id := range candidates {
		if t, ok := actors.Get(id); ok && t.Meta.IsAlive && meta.IsLiving(id) {
			targetIDs = append(targetIDs, id)
		}
	}
	entry.TargetIDs = targetIDs

	pc := pipeline.New(&pipeline.NewInput{
		BattleID:  meta.BattleID,
		Seed:      meta.Seed,
		Action:    action,
		Move:      move,
		TargetIDs: targetIDs,
		UIDs:      idgen.NewScoped(move.CharID, strconv.FormatInt(source.Meta.ExchangeCounter, 10)),
	})
	if len(targetIDs) == 0 {
		pc.Skip(combat.SkipNoTarget)
		fillEntry(entry, pc)
		return nil, entry, nil
	}
	return &direction{pc: pc, source: source}, entry, nil
}

func (e *engine) calculate(d *direction, actors pipeline.Actors) error {
	if !d.pc.Phase(pipeline.PhaseRunCalculator) {
		return nil
	}
	for _, id := range d.pc.TargetIDs {
		if id == d.source.CharID {
			continue
		}
		target, _ := actors.Get(id)
		if err := e.calculator.Strike(&calculator.StrikeInput{Context: d.pc, Attacker: d.source, Defender: target}); err != nil {
			return errors.Wrapf(err, "calculator failed for %s -> %s", d.source.CharID, id)
		}
	}
	return nil
}

func (e *engine) apply(meta *combat.BattleMeta, changes combat.ResourceChanges, actors pipeline.Actors) ([]string, error) {
	var deaths []string
	for _, id := range changes.Actors() {
		a, ok := actors.Get(id)
		if !ok {
			return nil, errors.Internalf("resource changes for unloaded actor %s", id)
		}
		sheet, err := stats.Resolve(&stats.ResolveInput{BattleID: meta.BattleID, Seed: meta.Seed, Actor: a})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve limits of %s", id)
		}
		maxHP, maxEN := stats.Limits(sheet.Sheet)
		out, err := pipeline.Apply(a, changes[id], pipeline.Limits{MaxHP: maxHP, MaxEN: maxEN})
		if err != nil {
			return nil, err
		}
		if out.Died {
			meta.MarkDead(id)
			deaths = append(deaths, id)
		}
	}
	return deaths, nil
}

func fillEntry(entry *combat.LogEntry, pc *pipeline.Context) {
	entry.Events = append(entry.Events, pc.Result.Events...)
	entry.DamageFinal = pc.Result.DamageFinal
	entry.SkipReason = pc.Result.SkipReason
	entry.Strikes = pc.Result.Strikes
	if len(pc.Result.ResourceChanges) > 0 {
		entry.ResourceChanges = pc.Result.ResourceChanges
	}
}

// participantsOf lists every source that acted and every target it aimed at,
// excluding actors that were already dead when the action started.
func participantsOf(meta *combat.BattleMeta, entries []*combat.LogEntry) []string {
	set := make(map[string]bool)
	for _, entry := range entries {
		if entry.SkipReason == combat.SkipActorDead {
			continue
		}
		set[entry.SourceID] = true
		for _, id := range entry.TargetIDs {
			set[id] = true
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *engine) ResolveTargets(ctx context.Context, input *ResolveTargetsInput) (*ResolveTargetsOutput, error) {
	if input == nil || input.Meta == nil {
		return nil, errors.InvalidArgument("meta is required")
	}
	return &ResolveTargetsOutput{
		TargetIDs: targets.Resolve(&targets.ResolveInput{
			Meta:       input.Meta,
			SourceID:   input.SourceID,
			Descriptor: input.Descriptor,
			HP:         input.HP,
		}),
	}, nil
}

func (e *engine) DecideExchange(ctx context.Context, input *DecideExchangeInput) (*DecideExchangeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	payload, err := e.ai.DecideExchange(&ai.DecideInput{Bot: input.Bot, Enemy: input.Enemy})
	if err != nil {
		return nil, err
	}
	return &DecideExchangeOutput{Payload: payload}, nil
}
