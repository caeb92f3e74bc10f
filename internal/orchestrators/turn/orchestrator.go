// Package turn is the public entry into combat. It validates and registers
// intents, opens battles, serves battle views and owns the task handlers that
// drive a battle forward: collector and executor runs, AI decisions, intent
// timeouts and finalization.
package turn

//go:generate mockgen -destination=mock/mock_service.go -package=turnmock github.com/KirkDiggler/rpg-combat/internal/orchestrators/turn Service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/collector"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/executor"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	"github.com/KirkDiggler/rpg-combat/internal/services/notifier"
	"github.com/KirkDiggler/rpg-combat/internal/worker"
)

// Defaults for the turn manager
const (
	DefaultIntentTimeout = 20 * time.Second
	DefaultAIConcurrency = 3
)

// Service defines the interface for turn management
type Service interface {
	// CreateBattle seeds a new battle and schedules its first collector run
	CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error)

	// RegisterMove submits one intent. Submitting the same intent again
	// returns the pending move id.
	RegisterMove(ctx context.Context, input *RegisterMoveInput) (*RegisterMoveOutput, error)

	// RegisterMovesBatch submits several intents of one actor
	RegisterMovesBatch(ctx context.Context, input *RegisterMovesBatchInput) (*RegisterMovesBatchOutput, error)

	// GetBattleView returns a snapshot, a page of the live log or a page of
	// the archived history
	GetBattleView(ctx context.Context, input *GetBattleViewInput) (*GetBattleViewOutput, error)

	// RegisterTasks binds the combat task handlers to a worker runtime
	RegisterTasks(r Registrar)
}

// Registrar is the part of the worker runtime handlers are bound on
type Registrar interface {
	Register(kind worker.Kind, handler worker.Handler, opts worker.HandlerOptions)
}

// Config holds the dependencies for the turn manager
type Config struct {
	Repository  battle.Repository
	Engine      engine.Engine
	Collector   collector.Service
	Executor    executor.Service
	Queue       worker.Queue
	Notifier    notifier.Service
	IDGenerator idgen.Generator

	// Archive is optional; without it the history view is unavailable.
	Archive archive.Repository

	IntentTimeout time.Duration
	AIConcurrency int
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
	if c.Collector == nil {
		vb.RequiredField("Collector")
	}
	if c.Executor == nil {
		vb.RequiredField("Executor")
	}
	if c.Queue == nil {
		vb.RequiredField("Queue")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.IntentTimeout < 0 {
		vb.InvalidField("IntentTimeout", "cannot be negative")
	}
	if c.AIConcurrency < 0 {
		vb.InvalidField("AIConcurrency", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	repo          battle.Repository
	archive       archive.Repository
	engine        engine.Engine
	collector     collector.Service
	executor      executor.Service
	queue         worker.Queue
	notifier      notifier.Service
	idGen         idgen.Generator
	intentTimeout time.Duration
	aiSem         *semaphore.Weighted
}

// NewOrchestrator creates a turn manager with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	timeout := cfg.IntentTimeout
	if timeout == 0 {
		timeout = DefaultIntentTimeout
	}
	aiConcurrency := cfg.AIConcurrency
	if aiConcurrency == 0 {
		aiConcurrency = DefaultAIConcurrency
	}

	return &orchestrator{
		repo:          cfg.Repository,
		archive:       cfg.Archive,
		engine:        cfg.Engine,
		collector:     cfg.Collector,
		executor:      cfg.Executor,
		queue:         cfg.Queue,
		notifier:      cfg.Notifier,
		idGen:         cfg.IDGenerator,
		intentTimeout: timeout,
		aiSem:         semaphore.NewWeighted(int64(aiConcurrency)),
	}, nil
}

func (o *orchestrator) CreateBattle(ctx context.Context, input *CreateBattleInput) (*CreateBattleOutput, error) {
	if input == nil || input.Meta == nil {
		return nil, errors.InvalidArgument("meta is required")
	}

	meta := input.Meta
	meta.Active = true
	meta.Winner = ""
	meta.Corrupted = false

	if _, err := o.repo.CreateBattle(ctx, battle.CreateBattleInput{
		Meta:    meta,
		Actors:  input.Actors,
		Targets: input.Targets,
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to create battle %s", meta.BattleID)
	}

	slog.InfoContext(ctx, "battle created",
		"battle_id", meta.BattleID,
		"teams", len(meta.Teams),
		"actors", len(input.Actors))

	// bots with seeded target queues act without waiting for a player
	if err := o.scheduleCollect(ctx, meta.BattleID); err != nil {
		return nil, err
	}
	return &CreateBattleOutput{BattleID: meta.BattleID}, nil
}

func (o *orchestrator) RegisterMove(ctx context.Context, input *RegisterMoveInput) (*RegisterMoveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	meta, err := o.loadForSubmit(ctx, input.BattleID, input.CharID)
	if err != nil {
		return nil, err
	}

	out, err := o.register(ctx, meta, input.CharID, MoveRequest{Strategy: input.Strategy, Payload: input.Payload})
	if err != nil {
		return nil, err
	}
	if !out.Created {
		return out, nil
	}

	if !meta.IsAI(input.CharID) {
		if err := o.armTimer(ctx, meta.BattleID, combat.Signal{MoveID: out.MoveID}); err != nil {
			return nil, err
		}
	}
	if err := o.scheduleCollect(ctx, meta.BattleID); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) RegisterMovesBatch(ctx context.Context, input *RegisterMovesBatchInput) (*RegisterMovesBatchOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Moves) == 0 {
		return nil, errors.InvalidArgument("at least one move is required")
	}

	meta, err := o.loadForSubmit(ctx, input.BattleID, input.CharID)
	if err != nil {
		return nil, err
	}

	out := &RegisterMovesBatchOutput{MoveIDs: make([]string, 0, len(input.Moves))}
	var created []string
	for _, req := range input.Moves {
		reg, err := o.register(ctx, meta, input.CharID, req)
		if err != nil {
			return nil, err
		}
		out.MoveIDs = append(out.MoveIDs, reg.MoveID)
		if reg.Created {
			created = append(created, reg.MoveID)
		}
	}
	if len(created) == 0 {
		return out, nil
	}

	if meta.IsAI(input.CharID) {
		// one timer covers everything the bot just submitted
		err = o.armTimer(ctx, meta.BattleID, combat.Signal{MoveID: combat.SignalBatch, CharID: input.CharID})
	} else {
		for _, moveID := range created {
			if err = o.armTimer(ctx, meta.BattleID, combat.Signal{MoveID: moveID}); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if err := o.scheduleCollect(ctx, meta.BattleID); err != nil {
		return nil, err
	}
	return out, nil
}

// loadForSubmit returns the battle's meta once the submitter is known to be
// able to act in it.
func (o *orchestrator) loadForSubmit(ctx context.Context, battleID, charID string) (*combat.BattleMeta, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("battle_id", battleID, vb)
	errors.ValidateRequired("actor_id", charID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	metaOut, err := o.repo.GetMeta(ctx, battle.GetMetaInput{BattleID: battleID})
	if err != nil {
		return nil, err
	}
	meta := metaOut.Meta

	if !meta.Active {
		return nil, errors.BattleEnded(battleID)
	}
	if _, ok := meta.TeamOf(charID); !ok || meta.IsDead(charID) {
		return nil, errors.ActorDead(battleID, charID)
	}
	return meta, nil
}

func (o *orchestrator) register(ctx context.Context, meta *combat.BattleMeta, charID string, req MoveRequest) (*RegisterMoveOutput, error) {
	payload, err := combat.NewPayload(req.Strategy, req.Payload)
	if err != nil {
		return nil, err
	}

	if payload.Strategy() == combat.StrategyExchange {
		target := payload.Target()
		if target == charID {
			return nil, errors.InvalidArgument("an exchange cannot target its own actor")
		}
		ownTeam, _ := meta.TeamOf(charID)
		targetTeam, ok := meta.TeamOf(target)
		if !ok {
			return nil, errors.InvalidArgumentf("target %s is not in battle %s", target, meta.BattleID)
		}
		if targetTeam == ownTeam {
			return nil, errors.InvalidArgumentf("target %s is an ally of %s", target, charID)
		}
	}

	move := &combat.CombatMove{
		MoveID:  o.idGen.Generate(),
		CharID:  charID,
		Payload: payload,
	}
	reg, err := o.repo.RegisterIntent(ctx, battle.RegisterIntentInput{BattleID: meta.BattleID, Move: move})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to register move for %s", charID)
	}
	if !reg.Created {
		slog.DebugContext(ctx, "intent already pending",
			"battle_id", meta.BattleID,
			"actor_id", charID,
			"move_id", reg.MoveID)
		return &RegisterMoveOutput{MoveID: reg.MoveID, Created: false}, nil
	}

	// a player striking a bot puts itself on the bot's answer list
	if payload.Strategy() == combat.StrategyExchange && !meta.IsAI(charID) && meta.IsAI(payload.Target()) {
		if _, err := o.repo.AddRequiredTarget(ctx, battle.AddRequiredTargetInput{
			BattleID: meta.BattleID,
			BotID:    payload.Target(),
			TargetID: charID,
		}); err != nil {
			return nil, errors.Wrapf(err, "failed to queue %s for bot %s", charID, payload.Target())
		}
	}

	slog.DebugContext(ctx, "intent registered",
		"battle_id", meta.BattleID,
		"actor_id", charID,
		"move_id", reg.MoveID,
		"strategy", payload.Strategy())
	return &RegisterMoveOutput{MoveID: reg.MoveID, Created: true}, nil
}

func (o *orchestrator) GetBattleView(ctx context.Context, input *GetBattleViewInput) (*GetBattleViewOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("battle_id", input.BattleID, vb)
	errors.ValidateEnum("view", string(input.View), Views, vb)
	if input.Page < 0 {
		vb.InvalidField("page", "must be at least 1")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	page := input.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * PageSize

	switch input.View {
	case ViewSnapshot:
		loaded, err := o.repo.LoadContext(ctx, battle.LoadContextInput{BattleID: input.BattleID})
		if err != nil {
			return nil, err
		}
		out := &GetBattleViewOutput{Meta: loaded.Meta, Page: 1}
		ids := make([]string, 0, len(loaded.Actors))
		for id := range loaded.Actors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			out.Actors = append(out.Actors, loaded.Actors[id].Public())
		}
		return out, nil

	case ViewLog:
		if _, err := o.repo.GetMeta(ctx, battle.GetMetaInput{BattleID: input.BattleID}); err != nil {
			return nil, err
		}
		logOut, err := o.repo.ListLog(ctx, battle.ListLogInput{BattleID: input.BattleID, Offset: offset, Limit: PageSize})
		if err != nil {
			return nil, err
		}
		return &GetBattleViewOutput{Entries: logOut.Entries, Total: logOut.Total, Page: page}, nil

	default:
		if o.archive == nil {
			return nil, errors.FailedPrecondition("battle history is not available without an archive")
		}
		out := &GetBattleViewOutput{Page: page}
		summary, err := o.archive.GetBattle(ctx, archive.GetBattleInput{BattleID: input.BattleID})
		switch {
		case err == nil:
			out.Summary = summary.Summary
		case !errors.IsNotFound(err):
			return nil, err
		}
		logOut, err := o.archive.ListLog(ctx, archive.ListLogInput{BattleID: input.BattleID, Offset: offset, Limit: PageSize})
		if err != nil {
			return nil, err
		}
		if out.Summary == nil && logOut.Total == 0 {
			return nil, errors.InvalidBattle(input.BattleID)
		}
		out.Entries = logOut.Entries
		out.Total = logOut.Total
		return out, nil
	}
}
