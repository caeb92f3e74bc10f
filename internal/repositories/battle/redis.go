package battle

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-combat/internal/redis"
)

const (
	scanBatch = 200

	// Error messages
	errBattleIDEmpty = "battle ID cannot be empty"
	errMetaNil       = "meta cannot be nil"
	errMoveNil       = "move cannot be nil"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed battle repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) CreateBattle(ctx context.Context, input CreateBattleInput) (*CreateBattleOutput, error) {
	if input.Meta == nil {
		return nil, errors.InvalidArgument(errMetaNil)
	}
	if err := input.Meta.Validate(); err != nil {
		return nil, err
	}

	battleID := input.Meta.BattleID
	known := make(map[string]bool)
	for _, id := range input.Meta.ActorIDs() {
		known[id] = true
	}
	seen := make(map[string]bool)
	for _, a := range input.Actors {
		if a == nil || !known[a.CharID] {
			return nil, errors.InvalidArgument("every actor must belong to a team")
		}
		if err := a.Validate(); err != nil {
			return nil, errors.Wrapf(err, "snapshot of actor %s", a.CharID)
		}
		if input.Meta.IsDead(a.CharID) == a.Meta.IsAlive {
			return nil, errors.InvalidArgumentf("actor %s: is_alive=%t disagrees with dead_actors", a.CharID, a.Meta.IsAlive)
		}
		seen[a.CharID] = true
	}
	if len(seen) != len(known) {
		return nil, errors.InvalidArgument("every team member needs a snapshot")
	}
	for botID, targets := range input.Targets {
		if !known[botID] {
			return nil, errors.InvalidArgumentf("target queue for unknown actor %s", botID)
		}
		for _, t := range targets {
			if !known[t] {
				return nil, errors.InvalidArgumentf("target queue of %s names unknown actor %s", botID, t)
			}
		}
	}

	exists, err := r.client.Exists(ctx, metaKey(battleID)).Result()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to check battle")
	}
	if exists > 0 {
		return nil, errors.AlreadyExists("battle " + battleID + " already exists")
	}

	metaData, err := json.Marshal(input.Meta)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal meta")
	}

	pipe := r.client.TxPipeline()
	for _, a := range input.Actors {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal actor %s", a.CharID)
		}
		pipe.Set(ctx, actorKey(battleID, a.CharID), data, 0)
	}
	for botID, targets := range input.Targets {
		if len(targets) == 0 {
			continue
		}
		members := make([]interface{}, 0, len(targets))
		for _, t := range targets {
			members = append(members, t)
		}
		pipe.SAdd(ctx, targetsKey(battleID, botID), members...)
	}
	// meta last so a reader never sees a battle without its actors
	pipe.Set(ctx, metaKey(battleID), metaData, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to create battle")
	}

	return &CreateBattleOutput{}, nil
}

func (r *redisRepository) GetMeta(ctx context.Context, input GetMetaInput) (*GetMetaOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	meta, err := r.getMeta(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}
	return &GetMetaOutput{Meta: meta}, nil
}

func (r *redisRepository) getMeta(ctx context.Context, battleID string) (*combat.BattleMeta, error) {
	result, err := r.client.Get(ctx, metaKey(battleID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.InvalidBattle(battleID)
		}
		return nil, errors.StoreUnavailable(err, "failed to get battle meta")
	}

	var meta combat.BattleMeta
	if err := json.Unmarshal([]byte(result), &meta); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal meta of %s", battleID)
	}
	return &meta, nil
}

func (r *redisRepository) LoadContext(ctx context.Context, input LoadContextInput) (*LoadContextOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	meta, err := r.getMeta(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	actorIDs := input.ActorIDs
	if len(actorIDs) == 0 {
		actorIDs = meta.ActorIDs()
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(actorIDs))
	for _, id := range actorIDs {
		cmds[id] = pipe.Get(ctx, actorKey(input.BattleID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.StoreUnavailable(err, "failed to load actors")
	}

	actors := make(map[string]*combat.ActorSnapshot, len(actorIDs))
	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if err == redis.Nil {
				return nil, errors.ConsistencyViolationf("actor %s has no snapshot", id).
					WithMeta("battle_id", input.BattleID)
			}
			return nil, errors.StoreUnavailable(err, "failed to load actor")
		}
		var a combat.ActorSnapshot
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal actor %s", id)
		}
		actors[id] = &a
	}

	return &LoadContextOutput{Meta: meta, Actors: actors}, nil
}

func (r *redisRepository) RegisterIntent(ctx context.Context, input RegisterIntentInput) (*RegisterIntentOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Move == nil || input.Move.Payload == nil {
		return nil, errors.InvalidArgument(errMoveNil)
	}
	if input.Move.MoveID == "" || input.Move.CharID == "" {
		return nil, errors.InvalidArgument("move needs a move ID and a char ID")
	}

	data, err := json.Marshal(input.Move)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal move")
	}

	res, err := registerIntentScript.Run(ctx, r.client,
		[]string{intentsKey(input.BattleID, input.Move.CharID)},
		slotField(input.Move.DedupeKey()), input.Move.MoveID, moveField(input.Move.MoveID), string(data),
	).Slice()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to register intent")
	}
	if len(res) != 2 {
		return nil, errors.Internalf("unexpected register reply %v", res)
	}

	moveID, _ := res[0].(string)
	created, _ := res[1].(int64)
	return &RegisterIntentOutput{MoveID: moveID, Created: created == 1}, nil
}

func (r *redisRepository) ListIntents(ctx context.Context, input ListIntentsInput) (*ListIntentsOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(input.ActorIDs))
	for _, id := range input.ActorIDs {
		cmds[id] = pipe.HGetAll(ctx, intentsKey(input.BattleID, id))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to list intents")
		}
	}

	out := &ListIntentsOutput{Intents: make(map[string][]*combat.CombatMove, len(cmds))}
	for id, cmd := range cmds {
		fields := cmd.Val()
		moves := make([]*combat.CombatMove, 0, len(fields))
		for field, raw := range fields {
			if !strings.HasPrefix(field, moveFieldPrefix) {
				continue
			}
			var m combat.CombatMove
			if err := json.Unmarshal([]byte(raw), &m); err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal intent %s", field)
			}
			moves = append(moves, &m)
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i].MoveID < moves[j].MoveID })
		out.Intents[id] = moves
	}
	return out, nil
}

func (r *redisRepository) GetTargetQueues(ctx context.Context, input GetTargetQueuesInput) (*GetTargetQueuesOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.StringSliceCmd, len(input.BotIDs))
	for _, id := range input.BotIDs {
		cmds[id] = pipe.SMembers(ctx, targetsKey(input.BattleID, id))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to read target queues")
		}
	}

	out := &GetTargetQueuesOutput{Targets: make(map[string][]string, len(cmds))}
	for id, cmd := range cmds {
		targets := cmd.Val()
		sort.Strings(targets)
		out.Targets[id] = targets
	}
	return out, nil
}

func (r *redisRepository) AddRequiredTarget(ctx context.Context, input AddRequiredTargetInput) (*AddRequiredTargetOutput, error) {
	if input.BattleID == "" || input.BotID == "" || input.TargetID == "" {
		return nil, errors.InvalidArgument("battle, bot and target IDs are required")
	}

	n, err := r.client.SAdd(ctx, targetsKey(input.BattleID, input.BotID), input.TargetID).Result()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to add required target")
	}
	return &AddRequiredTargetOutput{Added: n > 0}, nil
}

func (r *redisRepository) TransferActions(ctx context.Context, input TransferActionsInput) (*TransferActionsOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if len(input.Actions) == 0 && len(input.Signals) == 0 {
		return &TransferActionsOutput{}, nil
	}

	keys := []string{actionsKey(input.BattleID), signalsKey(input.BattleID)}
	keyIndex := make(map[string]int)
	args := []interface{}{len(input.Actions), len(input.Signals)}
	var consumed []interface{}
	pushed := 0

	for _, action := range input.Actions {
		data, err := json.Marshal(action)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal action %s", action.ActionID)
		}
		args = append(args, string(data))

		for _, move := range action.Moves() {
			key := intentsKey(input.BattleID, move.CharID)
			idx, ok := keyIndex[key]
			if !ok {
				keys = append(keys, key)
				idx = len(keys) // Lua KEYS are 1-based
				keyIndex[key] = idx
			}
			consumed = append(consumed, idx, move.MoveID, slotField(move.DedupeKey()))
			pushed++
		}
	}
	for _, sig := range input.Signals {
		args = append(args, sig.Key())
	}
	args = append(args, consumed...)

	deleted, err := transferActionsScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		if strings.HasPrefix(err.Error(), "ABORTED") {
			return nil, errors.Abortedf("transfer rejected: %s", err.Error())
		}
		return nil, errors.StoreUnavailable(err, "failed to transfer actions")
	}

	return &TransferActionsOutput{Pushed: pushed, Deleted: deleted}, nil
}

func (r *redisRepository) PeekActions(ctx context.Context, input PeekActionsInput) (*PeekActionsOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Limit <= 0 {
		return nil, errors.InvalidArgument("limit must be positive")
	}

	pipe := r.client.Pipeline()
	rangeCmd := pipe.LRange(ctx, actionsKey(input.BattleID), 0, int64(input.Limit-1))
	lenCmd := pipe.LLen(ctx, actionsKey(input.BattleID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read action queue")
	}

	out := &PeekActionsOutput{Pending: int(lenCmd.Val())}
	for _, raw := range rangeCmd.Val() {
		var action combat.CombatAction
		if err := json.Unmarshal([]byte(raw), &action); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal action")
		}
		out.Actions = append(out.Actions, &action)
	}
	return out, nil
}

func (r *redisRepository) CommitBatch(ctx context.Context, input CommitBatchInput) (*CommitBatchOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Meta == nil {
		return nil, errors.InvalidArgument(errMetaNil)
	}

	metaData, err := json.Marshal(input.Meta)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal meta")
	}

	pipe := r.client.TxPipeline()
	for _, a := range input.Actors {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal actor %s", a.CharID)
		}
		pipe.Set(ctx, actorKey(input.BattleID, a.CharID), data, 0)
	}
	if len(input.Entries) > 0 {
		entries := make([]interface{}, 0, len(input.Entries))
		for _, e := range input.Entries {
			data, err := json.Marshal(e)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to marshal log entry %s", e.ActionID)
			}
			entries = append(entries, string(data))
		}
		pipe.RPush(ctx, logKey(input.BattleID), entries...)
	}
	if input.ConsumedActions > 0 {
		pipe.LTrim(ctx, actionsKey(input.BattleID), int64(input.ConsumedActions), -1)
	}
	for _, rm := range input.TargetRemovals {
		pipe.SRem(ctx, targetsKey(input.BattleID, rm.BotID), rm.TargetID)
	}
	pipe.Set(ctx, metaKey(input.BattleID), metaData, 0)
	logLen := pipe.LLen(ctx, logKey(input.BattleID))

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to commit batch")
	}

	return &CommitBatchOutput{LogLength: int(logLen.Val())}, nil
}

func (r *redisRepository) AddSignal(ctx context.Context, input AddSignalInput) (*AddSignalOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Signal.MoveID == "" {
		return nil, errors.InvalidArgument("signal needs a move ID")
	}

	if err := r.client.SAdd(ctx, signalsKey(input.BattleID), input.Signal.Key()).Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to add timeout signal")
	}
	return &AddSignalOutput{}, nil
}

func (r *redisRepository) ListSignals(ctx context.Context, input ListSignalsInput) (*ListSignalsOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	keys, err := r.client.SMembers(ctx, signalsKey(input.BattleID)).Result()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read timeout signals")
	}

	out := &ListSignalsOutput{}
	for _, key := range keys {
		sig, err := combat.ParseSignal(key)
		if err != nil {
			return nil, err
		}
		out.Signals = append(out.Signals, sig)
	}
	sort.Slice(out.Signals, func(i, j int) bool {
		a, b := out.Signals[i], out.Signals[j]
		if a.CharID != b.CharID {
			return a.CharID < b.CharID
		}
		return a.MoveID < b.MoveID
	})
	return out, nil
}

func (r *redisRepository) ListLog(ctx context.Context, input ListLogInput) (*ListLogOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Offset < 0 || input.Limit <= 0 {
		return nil, errors.InvalidArgument("offset must be >= 0 and limit positive")
	}

	pipe := r.client.Pipeline()
	rangeCmd := pipe.LRange(ctx, logKey(input.BattleID), int64(input.Offset), int64(input.Offset+input.Limit-1))
	lenCmd := pipe.LLen(ctx, logKey(input.BattleID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read battle log")
	}

	out := &ListLogOutput{Total: int(lenCmd.Val())}
	for _, raw := range rangeCmd.Val() {
		var entry combat.LogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal log entry")
		}
		out.Entries = append(out.Entries, &entry)
	}
	return out, nil
}

func (r *redisRepository) Finalize(ctx context.Context, input FinalizeInput) (*FinalizeOutput, error) {
	if input.Meta == nil {
		return nil, errors.InvalidArgument(errMetaNil)
	}
	battleID := input.Meta.BattleID
	if battleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	if input.Meta.Active {
		return nil, errors.InvalidArgument("final meta must be inactive")
	}

	metaData, err := json.Marshal(input.Meta)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal meta")
	}
	entry := ""
	if input.Entry != nil {
		data, err := json.Marshal(input.Entry)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal system entry")
		}
		entry = string(data)
	}

	keys := []string{
		finalizedKey(battleID),
		metaKey(battleID),
		actionsKey(battleID),
		signalsKey(battleID),
		logKey(battleID),
	}
	for _, id := range input.Meta.ActorIDs() {
		keys = append(keys, intentsKey(battleID, id))
	}

	res, err := finalizeScript.Run(ctx, r.client, keys, input.Meta.Winner, string(metaData), entry).Int()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to finalize battle")
	}
	if res < 0 {
		return nil, errors.InvalidBattle(battleID)
	}
	return &FinalizeOutput{First: res == 1}, nil
}

func (r *redisRepository) IsAnnounced(ctx context.Context, input IsAnnouncedInput) (*IsAnnouncedOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	n, err := r.client.Exists(ctx, announcedKey(input.BattleID)).Result()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read announcement marker")
	}
	return &IsAnnouncedOutput{Announced: n > 0}, nil
}

func (r *redisRepository) MarkAnnounced(ctx context.Context, input MarkAnnouncedInput) (*MarkAnnouncedOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	if err := r.client.Set(ctx, announcedKey(input.BattleID), "1", 0).Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to write announcement marker")
	}
	return &MarkAnnouncedOutput{}, nil
}

func (r *redisRepository) ListBattleIDs(ctx context.Context, _ ListBattleIDsInput) (*ListBattleIDsOutput, error) {
	var ids []string
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, battlePrefix+"*:meta", scanBatch).Result()
		if err != nil {
			return nil, errors.StoreUnavailable(err, "failed to scan battles")
		}
		for _, key := range keys {
			if id, ok := battleIDFromMetaKey(key); ok {
				ids = append(ids, id)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(ids)
	return &ListBattleIDsOutput{BattleIDs: ids}, nil
}
