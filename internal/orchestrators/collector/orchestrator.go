// Package collector turns pending intents into actions. A run reads the
// battle's intents and required-target queues, asks bots for missing
// exchanges, matches exchange pairs, promotes forced and instant work onto
// the action queue and, once the queue is drained, checks for victory.
package collector

//go:generate mockgen -destination=mock/mock_service.go -package=collectormock github.com/KirkDiggler/rpg-combat/internal/orchestrators/collector Service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/engine/victory"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
)

// Defaults for the batch-size advisory and backpressure
const (
	DefaultBatchMin              = 5
	DefaultBatchMax              = 100
	DefaultBatchDivisor          = 200
	DefaultBackpressureThreshold = 500
)

// Service defines the interface for collector runs
type Service interface {
	Collect(ctx context.Context, input *CollectInput) (*CollectOutput, error)
}

// BatchBounds sizes executor runs as clamp(floor(Divisor/N), Min, Max)
type BatchBounds struct {
	Min     int
	Max     int
	Divisor int
}

// Size returns the advised batch size for n living actors
func (b BatchBounds) Size(n int) int {
	if n <= 0 {
		return b.Max
	}
	size := b.Divisor / n
	if size < b.Min {
		return b.Min
	}
	if size > b.Max {
		return b.Max
	}
	return size
}

// Config holds the dependencies for the collector
type Config struct {
	Repository battle.Repository
	Engine     engine.Engine

	// Batch defaults to 5/100/200 when zero.
	Batch BatchBounds

	// BackpressureThreshold is the queue length at which matchmaking stops.
	BackpressureThreshold int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Batch != (BatchBounds{}) {
		if c.Batch.Min <= 0 || c.Batch.Divisor <= 0 {
			vb.InvalidField("Batch", "min and divisor must be positive")
		}
		if c.Batch.Max < c.Batch.Min {
			vb.InvalidField("Batch", "max must not be below min")
		}
	}
	if c.BackpressureThreshold < 0 {
		vb.InvalidField("BackpressureThreshold", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	repo         battle.Repository
	engine       engine.Engine
	batch        BatchBounds
	backpressure int
}

// NewOrchestrator creates a collector with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		repo:         cfg.Repository,
		engine:       cfg.Engine,
		batch:        cfg.Batch,
		backpressure: cfg.BackpressureThreshold,
	}
	if o.batch == (BatchBounds{}) {
		o.batch = BatchBounds{Min: DefaultBatchMin, Max: DefaultBatchMax, Divisor: DefaultBatchDivisor}
	}
	if o.backpressure == 0 {
		o.backpressure = DefaultBackpressureThreshold
	}
	return o, nil
}

// Collect runs one collector pass over the battle
func (o *orchestrator) Collect(ctx context.Context, input *CollectInput) (*CollectOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	metaOut, err := o.repo.GetMeta(ctx, battle.GetMetaInput{BattleID: input.BattleID})
	if err != nil {
		return nil, err
	}
	meta := metaOut.Meta
	if !meta.Active {
		return &CollectOutput{Active: false}, nil
	}

	living := meta.LivingActors()
	intentsOut, err := o.repo.ListIntents(ctx, battle.ListIntentsInput{BattleID: meta.BattleID, ActorIDs: living})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list intents for battle %s", meta.BattleID)
	}

	var bots []string
	for _, id := range living {
		if meta.IsAI(id) {
			bots = append(bots, id)
		}
	}
	queues := map[string][]string{}
	if len(bots) > 0 {
		targetsOut, err := o.repo.GetTargetQueues(ctx, battle.GetTargetQueuesInput{BattleID: meta.BattleID, BotIDs: bots})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get target queues for battle %s", meta.BattleID)
		}
		queues = targetsOut.Targets
	}

	out := &CollectOutput{
		Active:     true,
		AIRequests: gateAI(meta, bots, queues, intentsOut.Intents),
		BatchSize:  o.batch.Size(len(living)),
	}

	queue, err := o.repo.PeekActions(ctx, battle.PeekActionsInput{BattleID: meta.BattleID, Limit: 1})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read action queue of battle %s", meta.BattleID)
	}
	out.Pending = queue.Pending

	if queue.Pending >= o.backpressure {
		// Signals stay stored for the run that matches again.
		out.Backpressure = true
		slog.WarnContext(ctx, "collector backpressure, skipping matchmaking",
			"battle_id", meta.BattleID,
			"pending_actions", queue.Pending)
		return out, nil
	}

	signalsOut, err := o.repo.ListSignals(ctx, battle.ListSignalsInput{BattleID: meta.BattleID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read signals of battle %s", meta.BattleID)
	}

	harvested, err := o.harvest(ctx, meta, living, intentsOut.Intents)
	if err != nil {
		return nil, err
	}
	paired, forced := matchExchanges(meta, living, intentsOut.Intents, signalsOut.Signals)

	actions := make([]*combat.CombatAction, 0, len(harvested)+len(paired)+len(forced))
	actions = append(actions, harvested...)
	actions = append(actions, paired...)
	actions = append(actions, forced...)

	// Signals read by this run leave the store only with the transfer, so a
	// failed run leaves them for the retry.
	if len(actions) > 0 || len(signalsOut.Signals) > 0 {
		transfer, err := o.repo.TransferActions(ctx, battle.TransferActionsInput{
			BattleID: meta.BattleID,
			Actions:  actions,
			Signals:  signalsOut.Signals,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transfer actions of battle %s", meta.BattleID)
		}
		if transfer.Pushed != transfer.Deleted {
			return nil, errors.Internalf("battle %s: pushed %d moves but deleted %d intents",
				meta.BattleID, transfer.Pushed, transfer.Deleted)
		}
		if len(actions) > 0 {
			out.Actions = actions
			out.Pending += len(actions)
		}
	}

	slog.DebugContext(ctx, "collector run",
		"battle_id", meta.BattleID,
		"actions", len(out.Actions),
		"paired", len(paired),
		"forced", len(forced),
		"ai_requests", len(out.AIRequests),
		"signals", len(signalsOut.Signals))

	if out.Pending == 0 {
		if res := victory.Check(meta); res.Decided {
			out.Winner = res.Winner
			slog.InfoContext(ctx, "battle decided",
				"battle_id", meta.BattleID,
				"winner", res.Winner)
		}
	}
	return out, nil
}

// gateAI lists, per living bot, the required targets none of its pending
// exchanges aim at.
func gateAI(meta *combat.BattleMeta, bots []string, queues map[string][]string, intents map[string][]*combat.CombatMove) []AITurnRequest {
	var requests []AITurnRequest
	for _, bot := range bots {
		covered := make(map[string]bool)
		for _, move := range intents[bot] {
			if move.Strategy() == combat.StrategyExchange {
				covered[move.Payload.Target()] = true
			}
		}
		var missing []string
		for _, target := range queues[bot] {
			if !covered[target] && meta.IsLiving(target) {
				missing = append(missing, target)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			requests = append(requests, AITurnRequest{BotID: bot, MissingTargets: missing})
		}
	}
	return requests
}

// harvest turns every instant and item intent into its own action with
// resolved targets.
func (o *orchestrator) harvest(ctx context.Context, meta *combat.BattleMeta, living []string, intents map[string][]*combat.CombatMove) ([]*combat.CombatAction, error) {
	var actions []*combat.CombatAction
	var hp func(string) int

	for _, actorID := range living {
		for _, move := range intents[actorID] {
			var actionType combat.ActionType
			switch move.Strategy() {
			case combat.StrategyInstant:
				actionType = combat.ActionInstant
			case combat.StrategyItem:
				actionType = combat.ActionItem
			default:
				continue
			}

			if hp == nil {
				// descriptors like lowest_hp_enemy need current HP
				loaded, err := o.repo.LoadContext(ctx, battle.LoadContextInput{BattleID: meta.BattleID, ActorIDs: living})
				if err != nil {
					return nil, errors.Wrapf(err, "failed to load actors of battle %s", meta.BattleID)
				}
				hp = func(id string) int {
					if a, ok := loaded.Actors[id]; ok {
						return a.Meta.HP
					}
					return 0
				}
			}

			resolved, err := o.engine.ResolveTargets(ctx, &engine.ResolveTargetsInput{
				Meta:       meta,
				SourceID:   move.CharID,
				Descriptor: move.Payload.Target(),
				HP:         hp,
			})
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve targets of move %s", move.MoveID)
			}
			move.Targets = resolved.TargetIDs

			actions = append(actions, &combat.CombatAction{
				ActionID: move.MoveID,
				Type:     actionType,
				Move:     move,
			})
		}
	}
	return actions, nil
}

// matchExchanges pairs exchange intents aimed at each other. The pool is
// walked in (actor_id, move_id) order and each intent takes the first
// reciprocal intent still free. Unmatched intents against dead targets, and
// those a timeout signal names, become forced actions.
func matchExchanges(meta *combat.BattleMeta, living []string, intents map[string][]*combat.CombatMove, signals []combat.Signal) (paired, forced []*combat.CombatAction) {
	var pool []*combat.CombatMove
	for _, actorID := range living {
		for _, move := range intents[actorID] {
			if move.Strategy() == combat.StrategyExchange {
				pool = append(pool, move)
			}
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].CharID != pool[j].CharID {
			return pool[i].CharID < pool[j].CharID
		}
		return pool[i].MoveID < pool[j].MoveID
	})

	consumed := make(map[string]bool, len(pool))
	for _, a := range pool {
		if consumed[a.MoveID] {
			continue
		}
		target := a.Payload.Target()
		if !meta.IsLiving(target) {
			continue
		}
		for _, b := range pool {
			if consumed[b.MoveID] || b.MoveID == a.MoveID {
				continue
			}
			if b.CharID == target && b.Payload.Target() == a.CharID {
				consumed[a.MoveID] = true
				consumed[b.MoveID] = true
				a.Targets = []string{target}
				b.Targets = []string{a.CharID}
				paired = append(paired, &combat.CombatAction{
					ActionID:    a.MoveID + "+" + b.MoveID,
					Type:        combat.ActionExchange,
					Move:        a,
					PartnerMove: b,
				})
				break
			}
		}
	}

	for _, a := range pool {
		if consumed[a.MoveID] {
			continue
		}
		if meta.IsLiving(a.Payload.Target()) && !signalled(signals, a) {
			continue
		}
		consumed[a.MoveID] = true
		forced = append(forced, &combat.CombatAction{
			ActionID: a.MoveID,
			Type:     combat.ActionExchange,
			Move:     a,
			IsForced: true,
		})
	}
	return paired, forced
}

func signalled(signals []combat.Signal, move *combat.CombatMove) bool {
	for _, s := range signals {
		if s.Matches(move) {
			return true
		}
	}
	return false
}
