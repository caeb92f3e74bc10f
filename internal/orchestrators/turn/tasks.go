package turn

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/collector"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/executor"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	"github.com/KirkDiggler/rpg-combat/internal/services/notifier"
	"github.com/KirkDiggler/rpg-combat/internal/worker"
)

// Task kinds of the combat loop. Every task is scoped to one battle by its
// session id.
const (
	TaskCollect  worker.Kind = "combat.collect"
	TaskExecute  worker.Kind = "combat.execute"
	TaskAI       worker.Kind = "combat.ai"
	TaskTimeout  worker.Kind = "combat.timeout"
	TaskFinalize worker.Kind = "combat.finalize"
)

type executePayload struct {
	BatchSize int `json:"batch_size"`
}

type finalizePayload struct {
	Winner    string `json:"winner"`
	Corrupted bool   `json:"corrupted,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (o *orchestrator) RegisterTasks(r Registrar) {
	r.Register(TaskCollect, o.handleCollect, worker.HandlerOptions{Singleton: true})
	r.Register(TaskExecute, o.handleExecute, worker.HandlerOptions{Singleton: true})
	r.Register(TaskAI, o.handleAI, worker.HandlerOptions{})
	r.Register(TaskTimeout, o.handleTimeout, worker.HandlerOptions{})
	r.Register(TaskFinalize, o.handleFinalize, worker.HandlerOptions{Singleton: true})
}

func (o *orchestrator) enqueue(ctx context.Context, kind worker.Kind, battleID string, payload any, unique bool) error {
	task := &worker.Task{Kind: kind, SessionID: battleID, Unique: unique}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal %s payload", kind)
		}
		task.Payload = data
	}
	if _, err := o.queue.Enqueue(ctx, &worker.EnqueueInput{Task: task}); err != nil {
		return errors.Wrapf(err, "failed to enqueue %s for battle %s", kind, battleID)
	}
	return nil
}

func (o *orchestrator) scheduleCollect(ctx context.Context, battleID string) error {
	return o.enqueue(ctx, TaskCollect, battleID, nil, true)
}

// armTimer schedules the check_timeout signal of a move or batch.
func (o *orchestrator) armTimer(ctx context.Context, battleID string, signal combat.Signal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return errors.Wrap(err, "failed to marshal timeout signal")
	}
	_, err = o.queue.Enqueue(ctx, &worker.EnqueueInput{
		Task:  &worker.Task{Kind: TaskTimeout, SessionID: battleID, Payload: data},
		Delay: o.intentTimeout,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to arm timeout for battle %s", battleID)
	}
	return nil
}

func (o *orchestrator) handleCollect(ctx context.Context, task *worker.Task) ([]byte, error) {
	out, err := o.collector.Collect(ctx, &collector.CollectInput{BattleID: task.SessionID})
	if err != nil {
		return nil, err
	}
	if !out.Active {
		return nil, nil
	}

	for _, req := range out.AIRequests {
		if err := o.enqueue(ctx, TaskAI, task.SessionID, req, false); err != nil {
			return nil, err
		}
	}

	if len(out.Actions) > 0 || out.Pending > 0 {
		if err := o.enqueue(ctx, TaskExecute, task.SessionID, executePayload{BatchSize: out.BatchSize}, true); err != nil {
			return nil, err
		}
	}

	if out.Decided() {
		if err := o.enqueue(ctx, TaskFinalize, task.SessionID, finalizePayload{Winner: out.Winner}, true); err != nil {
			return nil, err
		}
	}

	return json.Marshal(map[string]int{"actions": len(out.Actions), "pending": out.Pending})
}

func (o *orchestrator) handleExecute(ctx context.Context, task *worker.Task) ([]byte, error) {
	var payload executePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, errors.InvalidArgumentf("malformed execute payload: %v", err)
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = collector.DefaultBatchMin
	}

	out, err := o.executor.Execute(ctx, &executor.ExecuteInput{BattleID: task.SessionID, BatchSize: payload.BatchSize})
	if errors.HasReason(err, errors.ReasonConsistencyViolation) {
		slog.ErrorContext(ctx, "battle state is inconsistent, ending battle as a draw",
			"battle_id", task.SessionID,
			"error", err)
		return nil, o.enqueue(ctx, TaskFinalize, task.SessionID, finalizePayload{
			Winner:    combat.WinnerDraw,
			Corrupted: true,
			Reason:    err.Error(),
		}, true)
	}
	if err != nil {
		return nil, err
	}

	if out.Remaining > 0 {
		if err := o.enqueue(ctx, TaskExecute, task.SessionID, payload, true); err != nil {
			return nil, err
		}
	}
	// new deaths and freed actors need a fresh matchmaking pass
	if out.Processed > 0 {
		if err := o.scheduleCollect(ctx, task.SessionID); err != nil {
			return nil, err
		}
	}

	return json.Marshal(map[string]int{"processed": out.Processed, "remaining": out.Remaining})
}

func (o *orchestrator) handleAI(ctx context.Context, task *worker.Task) ([]byte, error) {
	var req collector.AITurnRequest
	if err := json.Unmarshal(task.Payload, &req); err != nil {
		return nil, errors.InvalidArgumentf("malformed ai payload: %v", err)
	}

	if err := o.aiSem.Acquire(ctx, 1); err != nil {
		return nil, errors.Unavailablef("ai slot: %v", err)
	}
	defer o.aiSem.Release(1)

	loaded, err := o.repo.LoadContext(ctx, battle.LoadContextInput{
		BattleID: task.SessionID,
		ActorIDs: append([]string{req.BotID}, req.MissingTargets...),
	})
	if err != nil {
		return nil, err
	}
	if !loaded.Meta.Active {
		return nil, nil
	}
	bot, ok := loaded.Actors[req.BotID]
	if !ok || loaded.Meta.IsDead(req.BotID) {
		slog.InfoContext(ctx, "bot cannot act, skipping turn",
			"battle_id", task.SessionID,
			"bot_id", req.BotID)
		return nil, nil
	}

	moves := make([]MoveRequest, 0, len(req.MissingTargets))
	for _, targetID := range req.MissingTargets {
		enemy, ok := loaded.Actors[targetID]
		if !ok || loaded.Meta.IsDead(targetID) {
			continue
		}
		decided, err := o.engine.DecideExchange(ctx, &engine.DecideExchangeInput{Bot: bot, Enemy: enemy})
		if err != nil {
			return nil, errors.Wrapf(err, "bot %s failed to decide against %s", req.BotID, targetID)
		}
		moves = append(moves, MoveRequest{
			Strategy: combat.StrategyExchange,
			Payload: combat.PayloadInput{
				TargetID:  decided.Payload.TargetID,
				AbilityID: decided.Payload.AbilityID,
				FeintID:   decided.Payload.FeintID,
			},
		})
	}
	if len(moves) == 0 {
		return nil, nil
	}

	out, err := o.RegisterMovesBatch(ctx, &RegisterMovesBatchInput{
		BattleID: task.SessionID,
		CharID:   req.BotID,
		Moves:    moves,
	})
	if errors.HasReason(err, errors.ReasonActorDead) || errors.HasReason(err, errors.ReasonBattleEnded) {
		slog.InfoContext(ctx, "bot turn dropped",
			"battle_id", task.SessionID,
			"bot_id", req.BotID,
			"error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "bot submitted moves",
		"battle_id", task.SessionID,
		"bot_id", req.BotID,
		"moves", len(out.MoveIDs))
	return json.Marshal(out.MoveIDs)
}

func (o *orchestrator) handleTimeout(ctx context.Context, task *worker.Task) ([]byte, error) {
	var signal combat.Signal
	if err := json.Unmarshal(task.Payload, &signal); err != nil {
		return nil, errors.InvalidArgumentf("malformed timeout payload: %v", err)
	}

	if _, err := o.repo.AddSignal(ctx, battle.AddSignalInput{BattleID: task.SessionID, Signal: signal}); err != nil {
		return nil, err
	}
	return nil, o.scheduleCollect(ctx, task.SessionID)
}

// handleFinalize ends a battle once and announces the result at least once.
// The atomic finalize in the hot cache decides which run ends the battle; the
// announcement marker lets a retried run finish delivery after a failed
// notify.
func (o *orchestrator) handleFinalize(ctx context.Context, task *worker.Task) ([]byte, error) {
	var payload finalizePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, errors.InvalidArgumentf("malformed finalize payload: %v", err)
	}

	metaOut, err := o.repo.GetMeta(ctx, battle.GetMetaInput{BattleID: task.SessionID})
	if err != nil {
		return nil, err
	}
	meta := metaOut.Meta

	if meta.Active {
		meta.Active = false
		meta.Winner = payload.Winner
		meta.Corrupted = payload.Corrupted

		var entry *combat.LogEntry
		if meta.Corrupted {
			entry = corruptedEntry(meta, payload.Reason)
		}
		fin, err := o.repo.Finalize(ctx, battle.FinalizeInput{Meta: meta, Entry: entry})
		if err != nil {
			return nil, err
		}
		if !fin.First {
			// the run that ended the battle owns the announcement
			return nil, nil
		}

		slog.InfoContext(ctx, "battle finished",
			"battle_id", meta.BattleID,
			"winner", meta.Winner,
			"corrupted", meta.Corrupted,
			"exchange_counter", meta.ExchangeCounter)
	}

	announced, err := o.repo.IsAnnounced(ctx, battle.IsAnnouncedInput{BattleID: meta.BattleID})
	if err != nil {
		return nil, err
	}
	if announced.Announced {
		return nil, nil
	}

	if _, err := o.notifier.OnVictory(ctx, &notifier.OnVictoryInput{BattleID: meta.BattleID, Winner: meta.Winner}); err != nil {
		slog.ErrorContext(ctx, "failed to announce winner", "battle_id", meta.BattleID, "error", err)
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to announce winner of battle %s", meta.BattleID)
	}

	if o.archive != nil {
		if meta.Corrupted {
			o.archiveSystemEntry(ctx, meta.BattleID, corruptedEntry(meta, payload.Reason))
		}
		if _, err := o.archive.SaveBattle(ctx, archive.SaveBattleInput{Meta: meta}); err != nil {
			slog.ErrorContext(ctx, "failed to archive battle", "battle_id", meta.BattleID, "error", err)
		}
	}

	if _, err := o.repo.MarkAnnounced(ctx, battle.MarkAnnouncedInput{BattleID: meta.BattleID}); err != nil {
		return nil, err
	}

	return json.Marshal(finalizePayload{Winner: meta.Winner, Corrupted: meta.Corrupted, Reason: payload.Reason})
}

func corruptedEntry(meta *combat.BattleMeta, reason string) *combat.LogEntry {
	return &combat.LogEntry{
		ActionID:        "system-corrupted",
		ExchangeCounter: meta.ExchangeCounter,
		SourceID:        string(combat.ActionSystem),
		ActionType:      combat.ActionSystem,
		Events:          []combat.Event{{Type: combat.EventCorrupted, Detail: reason}},
	}
}

// archiveSystemEntry mirrors the closing entry of a corrupted battle to the
// cold store at the end of the hot log.
func (o *orchestrator) archiveSystemEntry(ctx context.Context, battleID string, entry *combat.LogEntry) {
	logOut, err := o.repo.ListLog(ctx, battle.ListLogInput{BattleID: battleID, Limit: 1})
	if err != nil {
		slog.WarnContext(ctx, "failed to read log length", "battle_id", battleID, "error", err)
		return
	}
	if _, err := o.archive.AppendLog(ctx, archive.AppendLogInput{
		BattleID: battleID,
		FirstSeq: logOut.Total - 1,
		Entries:  []*combat.LogEntry{entry},
	}); err != nil {
		slog.WarnContext(ctx, "failed to archive system entry", "battle_id", battleID, "error", err)
	}
}
