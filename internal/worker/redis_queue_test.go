package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
	"github.com/KirkDiggler/rpg-combat/internal/worker"
)

type RedisQueueTestSuite struct {
	suite.Suite
	ctx     context.Context
	mr      *miniredis.Miniredis
	clock   *clock.Manual
	queue   worker.Queue
	cleanup func()
}

func TestRedisQueueTestSuite(t *testing.T) {
	suite.Run(t, new(RedisQueueTestSuite))
}

func (s *RedisQueueTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, mr, cleanup := testutils.CreateTestRedis(s.T())
	s.mr = mr
	s.cleanup = cleanup
	s.clock = clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.queue, err = worker.NewRedisQueue(&worker.RedisQueueConfig{
		Client: client,
		Name:   "test",
		Clock:  s.clock,
		IDGen:  idgen.NewSequential("task"),
	})
	s.Require().NoError(err)
}

func (s *RedisQueueTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisQueueTestSuite) enqueue(task *worker.Task, delay time.Duration) bool {
	out, err := s.queue.Enqueue(s.ctx, &worker.EnqueueInput{Task: task, Delay: delay})
	s.Require().NoError(err)
	return out.Enqueued
}

func (s *RedisQueueTestSuite) dequeue(limit int) []*worker.Task {
	out, err := s.queue.Dequeue(s.ctx, &worker.DequeueInput{Limit: limit})
	s.Require().NoError(err)
	return out.Tasks
}

func (s *RedisQueueTestSuite) TestNewRedisQueueRequiresClient() {
	_, err := worker.NewRedisQueue(&worker.RedisQueueConfig{})
	s.Error(err)

	_, err = worker.NewRedisQueue(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisQueueTestSuite) TestEnqueueRequiresKind() {
	_, err := s.queue.Enqueue(s.ctx, &worker.EnqueueInput{Task: &worker.Task{SessionID: "b1"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisQueueTestSuite) TestDequeueIsFIFO() {
	payload, err := json.Marshal(map[string]string{"battle_id": "b1"})
	s.Require().NoError(err)

	first := &worker.Task{Kind: "collect", SessionID: "b1", Payload: payload}
	s.True(s.enqueue(first, 0))
	s.Equal("task_1", first.ID)
	s.True(s.enqueue(&worker.Task{Kind: "execute", SessionID: "b1"}, 0))
	s.True(s.enqueue(&worker.Task{Kind: "collect", SessionID: "b2"}, 0))

	tasks := s.dequeue(2)
	s.Require().Len(tasks, 2)
	s.Equal("task_1", tasks[0].ID)
	s.Equal(worker.Kind("collect"), tasks[0].Kind)
	s.JSONEq(`{"battle_id":"b1"}`, string(tasks[0].Payload))
	s.Equal(worker.Kind("execute"), tasks[1].Kind)

	tasks = s.dequeue(10)
	s.Require().Len(tasks, 1)
	s.Equal("b2", tasks[0].SessionID)

	s.Empty(s.dequeue(10))
}

func (s *RedisQueueTestSuite) TestDelayedTaskWaitsForClock() {
	s.True(s.enqueue(&worker.Task{Kind: "timer", SessionID: "b1"}, 5*time.Second))

	stats, err := s.queue.Stats(s.ctx, &worker.StatsInput{})
	s.Require().NoError(err)
	s.Equal(0, stats.Ready)
	s.Equal(1, stats.Delayed)

	s.Empty(s.dequeue(10))

	s.clock.Advance(5 * time.Second)
	tasks := s.dequeue(10)
	s.Require().Len(tasks, 1)
	s.Equal(worker.Kind("timer"), tasks[0].Kind)

	stats, err = s.queue.Stats(s.ctx, &worker.StatsInput{})
	s.Require().NoError(err)
	s.Equal(0, stats.Delayed)
}

func (s *RedisQueueTestSuite) TestUniqueTasksCollapseUntilDequeued() {
	s.True(s.enqueue(&worker.Task{Kind: "collect", SessionID: "b1", Unique: true}, 0))
	s.False(s.enqueue(&worker.Task{Kind: "collect", SessionID: "b1", Unique: true}, 0))
	s.True(s.enqueue(&worker.Task{Kind: "collect", SessionID: "b2", Unique: true}, 0))

	s.Len(s.dequeue(10), 2)

	// once popped, the next request schedules a fresh run
	s.True(s.enqueue(&worker.Task{Kind: "collect", SessionID: "b1", Unique: true}, 0))
	s.Len(s.dequeue(10), 1)
}

func (s *RedisQueueTestSuite) TestAcquireAndRelease() {
	in := &worker.AcquireInput{Kind: "collect", SessionID: "b1", Owner: "task_1", TTL: time.Minute}
	out, err := s.queue.Acquire(s.ctx, in)
	s.Require().NoError(err)
	s.True(out.Acquired)

	out, err = s.queue.Acquire(s.ctx, &worker.AcquireInput{Kind: "collect", SessionID: "b1", Owner: "task_2", TTL: time.Minute})
	s.Require().NoError(err)
	s.False(out.Acquired)

	// another session is independent
	out, err = s.queue.Acquire(s.ctx, &worker.AcquireInput{Kind: "collect", SessionID: "b2", Owner: "task_2", TTL: time.Minute})
	s.Require().NoError(err)
	s.True(out.Acquired)

	rel, err := s.queue.Release(s.ctx, &worker.ReleaseInput{Kind: "collect", SessionID: "b1", Owner: "task_2"})
	s.Require().NoError(err)
	s.False(rel.Released)

	rel, err = s.queue.Release(s.ctx, &worker.ReleaseInput{Kind: "collect", SessionID: "b1", Owner: "task_1"})
	s.Require().NoError(err)
	s.True(rel.Released)

	out, err = s.queue.Acquire(s.ctx, &worker.AcquireInput{Kind: "collect", SessionID: "b1", Owner: "task_2", TTL: time.Minute})
	s.Require().NoError(err)
	s.True(out.Acquired)
}

func (s *RedisQueueTestSuite) TestLockExpires() {
	out, err := s.queue.Acquire(s.ctx, &worker.AcquireInput{Kind: "collect", SessionID: "b1", Owner: "task_1", TTL: time.Second})
	s.Require().NoError(err)
	s.True(out.Acquired)

	s.mr.FastForward(2 * time.Second)

	out, err = s.queue.Acquire(s.ctx, &worker.AcquireInput{Kind: "collect", SessionID: "b1", Owner: "task_2", TTL: time.Second})
	s.Require().NoError(err)
	s.True(out.Acquired)
}

func (s *RedisQueueTestSuite) TestResults() {
	_, err := s.queue.GetResult(s.ctx, &worker.GetResultInput{TaskID: "task_9"})
	s.True(errors.IsNotFound(err))

	_, err = s.queue.StoreResult(s.ctx, &worker.StoreResultInput{TaskID: "task_9", Result: []byte("ok"), TTL: time.Minute})
	s.Require().NoError(err)

	out, err := s.queue.GetResult(s.ctx, &worker.GetResultInput{TaskID: "task_9"})
	s.Require().NoError(err)
	s.Equal("ok", string(out.Result))

	s.mr.FastForward(2 * time.Minute)
	_, err = s.queue.GetResult(s.ctx, &worker.GetResultInput{TaskID: "task_9"})
	s.True(errors.IsNotFound(err))
}
