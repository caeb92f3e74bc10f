// Package executor drains a battle's action queue. A batch loads the battle
// once, resolves each action in queue order against the live snapshots,
// checks the touched actors for consistency and commits everything in one
// write. Committed entries are then mirrored to the archive.
package executor

//go:generate mockgen -destination=mock/mock_service.go -package=executormock github.com/KirkDiggler/rpg-combat/internal/orchestrators/executor Service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
)

// DefaultCheckpointEvery is how many battle ticks pass between archive
// checkpoints of the living snapshots
const DefaultCheckpointEvery = 10

// Service defines the interface for executor batches
type Service interface {
	Execute(ctx context.Context, input *ExecuteInput) (*ExecuteOutput, error)
}

// Config holds the dependencies for the executor
type Config struct {
	Repository battle.Repository
	Engine     engine.Engine

	// Archive is optional; without it nothing is mirrored.
	Archive         archive.Repository
	CheckpointEvery int64
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
	if c.CheckpointEvery < 0 {
		vb.InvalidField("CheckpointEvery", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	repo            battle.Repository
	engine          engine.Engine
	archive         archive.Repository
	checkpointEvery int64
}

// NewOrchestrator creates an executor with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		repo:            cfg.Repository,
		engine:          cfg.Engine,
		archive:         cfg.Archive,
		checkpointEvery: cfg.CheckpointEvery,
	}
	if o.checkpointEvery == 0 {
		o.checkpointEvery = DefaultCheckpointEvery
	}
	return o, nil
}

// Execute resolves up to BatchSize actions from the head of the queue
func (o *orchestrator) Execute(ctx context.Context, input *ExecuteInput) (*ExecuteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	if input.BatchSize <= 0 {
		return nil, errors.InvalidArgument("batch size must be positive")
	}

	peek, err := o.repo.PeekActions(ctx, battle.PeekActionsInput{BattleID: input.BattleID, Limit: input.BatchSize})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read actions of battle %s", input.BattleID)
	}
	if len(peek.Actions) == 0 {
		return &ExecuteOutput{Remaining: peek.Pending}, nil
	}

	loaded, err := o.repo.LoadContext(ctx, battle.LoadContextInput{BattleID: input.BattleID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load battle %s", input.BattleID)
	}
	meta := loaded.Meta
	if !meta.Active {
		// finalization clears the queue; whatever is left is stale
		return &ExecuteOutput{}, nil
	}
	startTick := meta.ExchangeCounter

	out := &ExecuteOutput{}
	touched := make(map[string]bool)
	var removals []battle.TargetRemoval

	for _, action := range peek.Actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resolved, err := o.engine.ResolveAction(ctx, &engine.ResolveActionInput{
			Meta:   meta,
			Action: action,
			Actors: loaded.Actors,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve action %s", action.ActionID)
		}

		out.Entries = append(out.Entries, resolved.Entry)
		out.Deaths = append(out.Deaths, resolved.Deaths...)
		for _, id := range resolved.Touched {
			touched[id] = true
		}
		removals = append(removals, targetRemovals(meta, action)...)
	}

	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	actors := make([]*combat.ActorSnapshot, 0, len(ids))
	for _, id := range ids {
		if a, ok := loaded.Actors[id]; ok {
			actors = append(actors, a)
		}
	}

	if err := engine.CheckConsistency(meta, actors...); err != nil {
		slog.ErrorContext(ctx, "battle state is inconsistent, batch not committed",
			"battle_id", meta.BattleID,
			"error", err)
		return nil, err
	}

	commit, err := o.repo.CommitBatch(ctx, battle.CommitBatchInput{
		BattleID:        meta.BattleID,
		Meta:            meta,
		Actors:          actors,
		Entries:         out.Entries,
		ConsumedActions: len(peek.Actions),
		TargetRemovals:  removals,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to commit batch of battle %s", meta.BattleID)
	}

	out.Processed = len(peek.Actions)
	out.Remaining = peek.Pending - out.Processed
	out.LogLength = commit.LogLength

	slog.DebugContext(ctx, "executor batch committed",
		"battle_id", meta.BattleID,
		"processed", out.Processed,
		"remaining", out.Remaining,
		"deaths", len(out.Deaths),
		"exchange_counter", meta.ExchangeCounter)

	o.mirror(ctx, meta, startTick, out, loaded.Actors)
	return out, nil
}

// mirror copies committed entries to the archive and checkpoints the living
// snapshots when the batch crossed a checkpoint boundary. The hot commit has
// already happened, so archive failures are logged and not returned.
func (o *orchestrator) mirror(ctx context.Context, meta *combat.BattleMeta, startTick int64, out *ExecuteOutput, actors map[string]*combat.ActorSnapshot) {
	if o.archive == nil {
		return
	}

	if _, err := o.archive.AppendLog(ctx, archive.AppendLogInput{
		BattleID: meta.BattleID,
		FirstSeq: out.LogLength - len(out.Entries),
		Entries:  out.Entries,
	}); err != nil {
		slog.WarnContext(ctx, "failed to archive log entries",
			"battle_id", meta.BattleID,
			"entries", len(out.Entries),
			"error", err)
	}

	if startTick/o.checkpointEvery == meta.ExchangeCounter/o.checkpointEvery {
		return
	}
	var living []*combat.ActorSnapshot
	for _, id := range meta.LivingActors() {
		if a, ok := actors[id]; ok {
			living = append(living, a)
		}
	}
	if _, err := o.archive.Checkpoint(ctx, archive.CheckpointInput{
		BattleID: meta.BattleID,
		Tick:     meta.ExchangeCounter,
		Actors:   living,
	}); err != nil {
		slog.WarnContext(ctx, "failed to checkpoint battle",
			"battle_id", meta.BattleID,
			"tick", meta.ExchangeCounter,
			"error", err)
	}
}

// targetRemovals lists the required-target entries an exchange satisfied:
// a bot that struck, or was struck by, a queued target no longer owes it.
func targetRemovals(meta *combat.BattleMeta, action *combat.CombatAction) []battle.TargetRemoval {
	if action.Type != combat.ActionExchange {
		return nil
	}
	var out []battle.TargetRemoval
	for _, move := range action.Moves() {
		target := move.Payload.Target()
		if meta.IsAI(move.CharID) {
			out = append(out, battle.TargetRemoval{BotID: move.CharID, TargetID: target})
		}
		if action.PartnerMove != nil && meta.IsAI(target) {
			out = append(out, battle.TargetRemoval{BotID: target, TargetID: move.CharID})
		}
	}
	return out
}
