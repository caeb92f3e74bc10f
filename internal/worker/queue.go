// Package worker provides the shared task queue battles are scheduled on:
// a ready list, delayed tasks, per-session singleton locks and a runtime
// that dispatches tasks to handlers under a concurrency bound.
package worker

//go:generate mockgen -destination=mock/mock_queue.go -package=workermock github.com/KirkDiggler/rpg-combat/internal/worker Queue

import (
	"context"
	"encoding/json"
	"time"
)

// Kind names a task handler
type Kind string

// Task is one unit of scheduled work. SessionID scopes singleton dispatch;
// Payload is decoded by the handler.
type Task struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Attempt   int             `json:"attempt"`
	// Unique collapses enqueues of the same (kind, session) while one is
	// still waiting to be dequeued.
	Unique bool `json:"unique,omitempty"`
}

// Queue is the task storage the runtime polls
type Queue interface {
	// Enqueue schedules a task, after Delay when it is positive
	Enqueue(ctx context.Context, input *EnqueueInput) (*EnqueueOutput, error)

	// Dequeue promotes due delayed tasks and pops up to Limit ready tasks
	Dequeue(ctx context.Context, input *DequeueInput) (*DequeueOutput, error)

	// Acquire takes the singleton lock of (kind, session) for Owner
	Acquire(ctx context.Context, input *AcquireInput) (*AcquireOutput, error)

	// Release drops the singleton lock if Owner still holds it
	Release(ctx context.Context, input *ReleaseInput) (*ReleaseOutput, error)

	// StoreResult keeps a task result for TTL
	StoreResult(ctx context.Context, input *StoreResultInput) (*StoreResultOutput, error)

	// GetResult returns a stored task result
	// Returns errors.NotFound when none is stored
	GetResult(ctx context.Context, input *GetResultInput) (*GetResultOutput, error)

	// Stats reports ready and delayed counts
	Stats(ctx context.Context, input *StatsInput) (*StatsOutput, error)
}

// EnqueueInput contains the task to schedule
type EnqueueInput struct {
	Task  *Task
	Delay time.Duration
}

// EnqueueOutput reports whether the task was stored or collapsed into a
// waiting one
type EnqueueOutput struct {
	Enqueued bool
}

// DequeueInput contains the maximum number of tasks to pop
type DequeueInput struct {
	Limit int
}

// DequeueOutput contains the popped tasks
type DequeueOutput struct {
	Tasks []*Task
}

// AcquireInput identifies a singleton lock
type AcquireInput struct {
	Kind      Kind
	SessionID string
	Owner     string
	TTL       time.Duration
}

// AcquireOutput reports whether the lock was taken
type AcquireOutput struct {
	Acquired bool
}

// ReleaseInput identifies a singleton lock and its owner
type ReleaseInput struct {
	Kind      Kind
	SessionID string
	Owner     string
}

// ReleaseOutput reports whether the lock was released
type ReleaseOutput struct {
	Released bool
}

// StoreResultInput contains a task result
type StoreResultInput struct {
	TaskID string
	Result []byte
	TTL    time.Duration
}

// StoreResultOutput is empty
type StoreResultOutput struct{}

// GetResultInput identifies a task
type GetResultInput struct {
	TaskID string
}

// GetResultOutput contains a stored result
type GetResultOutput struct {
	Result []byte
}

// StatsInput is empty
type StatsInput struct{}

// StatsOutput reports queue depth
type StatsOutput struct {
	Ready   int
	Delayed int
}
