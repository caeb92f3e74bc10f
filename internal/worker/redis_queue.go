package worker

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-combat/internal/redis"
)

const (
	defaultQueueName = "combat"
	pendingTTL       = 10 * time.Minute
	promoteLimit     = 1000
)

// dequeueScript moves due delayed tasks to the ready list and pops from it.
//
// KEYS[1] delayed zset, KEYS[2] ready list
// ARGV[1] now (unix ms), ARGV[2] pop limit, ARGV[3] promote limit
var dequeueScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[3]))
for _, member in ipairs(due) do
  redis.call('ZREM', KEYS[1], member)
  redis.call('RPUSH', KEYS[2], member)
end
local out = {}
for i = 1, tonumber(ARGV[2]) do
  local item = redis.call('LPOP', KEYS[2])
  if not item then
    break
  end
  out[#out + 1] = item
end
return out
`)

// releaseScript deletes a lock only while its value is the caller's token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisQueueConfig holds the dependencies for the redis queue
type RedisQueueConfig struct {
	Client redisclient.Client
	Name   string
	Clock  clock.Clock
	IDGen  idgen.Generator
}

// Validate ensures all required dependencies are provided
func (cfg *RedisQueueConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

type redisQueue struct {
	client redisclient.Client
	name   string
	clock  clock.Clock
	idGen  idgen.Generator
}

// NewRedisQueue creates a queue stored under worker:{name}:*
func NewRedisQueue(cfg *RedisQueueConfig) (Queue, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	q := &redisQueue{client: cfg.Client, name: cfg.Name, clock: cfg.Clock, idGen: cfg.IDGen}
	if q.name == "" {
		q.name = defaultQueueName
	}
	if q.clock == nil {
		q.clock = clock.New()
	}
	if q.idGen == nil {
		q.idGen = idgen.NewUUID("task")
	}
	return q, nil
}

func (q *redisQueue) key(parts ...string) string {
	k := "worker:" + q.name
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (q *redisQueue) readyKey() string   { return q.key("ready") }
func (q *redisQueue) delayedKey() string { return q.key("delayed") }

func (q *redisQueue) lockKey(kind Kind, sessionID string) string {
	return q.key("lock", string(kind), sessionID)
}

func (q *redisQueue) pendingKey(kind Kind, sessionID string) string {
	return q.key("pending", string(kind), sessionID)
}

func (q *redisQueue) Enqueue(ctx context.Context, input *EnqueueInput) (*EnqueueOutput, error) {
	if input == nil || input.Task == nil {
		return nil, errors.InvalidArgument("task is required")
	}
	task := input.Task
	if task.Kind == "" {
		return nil, errors.InvalidArgument("task kind is required")
	}
	if task.ID == "" {
		task.ID = q.idGen.Generate()
	}

	if task.Unique {
		ok, err := q.client.SetNX(ctx, q.pendingKey(task.Kind, task.SessionID), task.ID, pendingTTL).Result()
		if err != nil {
			return nil, errors.StoreUnavailable(err, "failed to mark pending task")
		}
		if !ok {
			return &EnqueueOutput{Enqueued: false}, nil
		}
	}

	data, err := json.Marshal(task)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal task")
	}

	if input.Delay > 0 {
		due := q.clock.Now().Add(input.Delay).UnixMilli()
		err = q.client.ZAdd(ctx, q.delayedKey(), redis.Z{Score: float64(due), Member: string(data)}).Err()
	} else {
		err = q.client.RPush(ctx, q.readyKey(), string(data)).Err()
	}
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to enqueue task")
	}
	return &EnqueueOutput{Enqueued: true}, nil
}

func (q *redisQueue) Dequeue(ctx context.Context, input *DequeueInput) (*DequeueOutput, error) {
	if input == nil || input.Limit <= 0 {
		return nil, errors.InvalidArgument("limit must be positive")
	}

	raw, err := dequeueScript.Run(ctx, q.client,
		[]string{q.delayedKey(), q.readyKey()},
		q.clock.Now().UnixMilli(), input.Limit, promoteLimit,
	).StringSlice()
	if err != nil && err != redis.Nil {
		return nil, errors.StoreUnavailable(err, "failed to dequeue tasks")
	}

	out := &DequeueOutput{}
	var forget []string
	for _, item := range raw {
		var task Task
		if err := json.Unmarshal([]byte(item), &task); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal task")
		}
		if task.Unique {
			forget = append(forget, q.pendingKey(task.Kind, task.SessionID))
		}
		out.Tasks = append(out.Tasks, &task)
	}

	// popped unique tasks no longer collapse later enqueues
	if len(forget) > 0 {
		if err := q.client.Del(ctx, forget...).Err(); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to clear pending markers")
		}
	}
	return out, nil
}

func (q *redisQueue) Acquire(ctx context.Context, input *AcquireInput) (*AcquireOutput, error) {
	if input == nil || input.Owner == "" || input.TTL <= 0 {
		return nil, errors.InvalidArgument("owner and ttl are required")
	}

	ok, err := q.client.SetNX(ctx, q.lockKey(input.Kind, input.SessionID), input.Owner, input.TTL).Result()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to acquire lock")
	}
	return &AcquireOutput{Acquired: ok}, nil
}

func (q *redisQueue) Release(ctx context.Context, input *ReleaseInput) (*ReleaseOutput, error) {
	if input == nil || input.Owner == "" {
		return nil, errors.InvalidArgument("owner is required")
	}

	n, err := releaseScript.Run(ctx, q.client, []string{q.lockKey(input.Kind, input.SessionID)}, input.Owner).Int()
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to release lock")
	}
	return &ReleaseOutput{Released: n == 1}, nil
}

func (q *redisQueue) StoreResult(ctx context.Context, input *StoreResultInput) (*StoreResultOutput, error) {
	if input == nil || input.TaskID == "" {
		return nil, errors.InvalidArgument("task ID is required")
	}
	if input.TTL <= 0 {
		return &StoreResultOutput{}, nil
	}

	if err := q.client.Set(ctx, q.key("result", input.TaskID), input.Result, input.TTL).Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to store task result")
	}
	return &StoreResultOutput{}, nil
}

func (q *redisQueue) GetResult(ctx context.Context, input *GetResultInput) (*GetResultOutput, error) {
	if input == nil || input.TaskID == "" {
		return nil, errors.InvalidArgument("task ID is required")
	}

	data, err := q.client.Get(ctx, q.key("result", input.TaskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no result for task %s", input.TaskID)
		}
		return nil, errors.StoreUnavailable(err, "failed to read task result")
	}
	return &GetResultOutput{Result: data}, nil
}

func (q *redisQueue) Stats(ctx context.Context, _ *StatsInput) (*StatsOutput, error) {
	pipe := q.client.Pipeline()
	ready := pipe.LLen(ctx, q.readyKey())
	delayed := pipe.ZCard(ctx, q.delayedKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.StoreUnavailable(err, "failed to read queue stats")
	}
	return &StatsOutput{Ready: int(ready.Val()), Delayed: int(delayed.Val())}, nil
}
