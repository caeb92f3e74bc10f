package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

const (
	defaultMaxConcurrent = 50
	defaultJobTimeout    = 30 * time.Second
	defaultPollInterval  = 100 * time.Millisecond
	defaultMaxAttempts   = 3
	defaultRetryTries    = 3
	defaultRetryInitial  = 50 * time.Millisecond

	tracerName = "github.com/KirkDiggler/rpg-combat/internal/worker"
)

// Handler processes one task. The returned bytes are kept as the task's
// result when retention is enabled. A retryable error (see
// errors.IsRetryable) is retried in place and then by re-enqueueing.
type Handler func(ctx context.Context, task *Task) ([]byte, error)

// HandlerOptions configures how tasks of a kind are dispatched
type HandlerOptions struct {
	// Singleton allows at most one running task of the kind per session.
	Singleton bool
}

type registration struct {
	handler Handler
	opts    HandlerOptions
}

// RuntimeConfig holds the dependencies and limits of the runtime
type RuntimeConfig struct {
	Queue         Queue
	MaxConcurrent int
	JobTimeout    time.Duration
	PollInterval  time.Duration
	// MaxAttempts bounds how often a task is re-enqueued after its in-place
	// retries are exhausted.
	MaxAttempts  int
	RetryTries   uint
	RetryInitial time.Duration
	// Retention is how long results are kept; zero keeps none.
	Retention time.Duration
	Tracer    trace.Tracer
}

// Validate ensures all required dependencies are provided
func (cfg *RuntimeConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Queue == nil {
		vb.RequiredField("Queue")
	}
	if cfg.MaxConcurrent < 0 {
		vb.InvalidField("MaxConcurrent", "cannot be negative")
	}
	if cfg.Retention < 0 {
		vb.InvalidField("Retention", "cannot be negative")
	}
	return vb.Build()
}

// Runtime polls the queue and dispatches tasks to handlers
type Runtime struct {
	queue         Queue
	maxConcurrent int
	jobTimeout    time.Duration
	pollInterval  time.Duration
	maxAttempts   int
	retryTries    uint
	retryInitial  time.Duration
	retention     time.Duration
	tracer        trace.Tracer
	sem           *semaphore.Weighted

	mu       sync.RWMutex
	handlers map[Kind]registration
}

// NewRuntime creates a runtime; unset limits take their defaults
func NewRuntime(cfg *RuntimeConfig) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		queue:         cfg.Queue,
		maxConcurrent: cfg.MaxConcurrent,
		jobTimeout:    cfg.JobTimeout,
		pollInterval:  cfg.PollInterval,
		maxAttempts:   cfg.MaxAttempts,
		retryTries:    cfg.RetryTries,
		retryInitial:  cfg.RetryInitial,
		retention:     cfg.Retention,
		tracer:        cfg.Tracer,
		handlers:      make(map[Kind]registration),
	}
	if r.maxConcurrent == 0 {
		r.maxConcurrent = defaultMaxConcurrent
	}
	if r.jobTimeout <= 0 {
		r.jobTimeout = defaultJobTimeout
	}
	if r.pollInterval <= 0 {
		r.pollInterval = defaultPollInterval
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultMaxAttempts
	}
	if r.retryTries == 0 {
		r.retryTries = defaultRetryTries
	}
	if r.retryInitial <= 0 {
		r.retryInitial = defaultRetryInitial
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	r.sem = semaphore.NewWeighted(int64(r.maxConcurrent))
	return r, nil
}

// Register binds a handler to a task kind, replacing any previous one
func (r *Runtime) Register(kind Kind, handler Handler, opts HandlerOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = registration{handler: handler, opts: opts}
}

// Run polls until ctx is cancelled, then waits for running tasks
func (r *Runtime) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "worker runtime started",
		"max_concurrent", r.maxConcurrent,
		"job_timeout", r.jobTimeout.String())

	var g errgroup.Group
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		n, err := r.poll(ctx, &g)
		if err != nil {
			slog.WarnContext(ctx, "worker poll failed", "error", err)
		}
		if n > 0 && err == nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		select {
		case <-ctx.Done():
			_ = g.Wait()
			slog.InfoContext(context.WithoutCancel(ctx), "worker runtime stopped")
			return nil
		case <-ticker.C:
		}
	}

	_ = g.Wait()
	return nil
}

// RunUntilIdle processes rounds of ready tasks until a poll finds none and
// returns how many tasks ran. Delayed tasks that are not yet due are left
// in place.
func (r *Runtime) RunUntilIdle(ctx context.Context) (int, error) {
	total := 0
	for {
		var g errgroup.Group
		n, err := r.poll(ctx, &g)
		_ = g.Wait()
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
}

// poll dequeues as many tasks as there are free slots and starts them on g.
func (r *Runtime) poll(ctx context.Context, g *errgroup.Group) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	slots := 0
	for slots < r.maxConcurrent && r.sem.TryAcquire(1) {
		slots++
	}
	if slots == 0 {
		return 0, nil
	}

	out, err := r.queue.Dequeue(ctx, &DequeueInput{Limit: slots})
	if err != nil {
		r.sem.Release(int64(slots))
		return 0, err
	}
	if unused := slots - len(out.Tasks); unused > 0 {
		r.sem.Release(int64(unused))
	}

	for _, task := range out.Tasks {
		g.Go(func() error {
			defer r.sem.Release(1)
			r.process(ctx, task)
			return nil
		})
	}
	return len(out.Tasks), nil
}

func (r *Runtime) process(ctx context.Context, task *Task) {
	r.mu.RLock()
	reg, ok := r.handlers[task.Kind]
	r.mu.RUnlock()
	if !ok {
		slog.ErrorContext(ctx, "no handler for task", "task_kind", task.Kind, "task_id", task.ID)
		return
	}

	if reg.opts.Singleton {
		lock, err := r.queue.Acquire(ctx, &AcquireInput{
			Kind:      task.Kind,
			SessionID: task.SessionID,
			Owner:     task.ID,
			TTL:       2 * r.jobTimeout,
		})
		if err != nil || !lock.Acquired {
			// another task of this kind holds the session; try again later
			r.requeue(ctx, task, task.Attempt, r.pollInterval)
			return
		}
		defer func() {
			if _, err := r.queue.Release(context.WithoutCancel(ctx), &ReleaseInput{
				Kind: task.Kind, SessionID: task.SessionID, Owner: task.ID,
			}); err != nil {
				slog.WarnContext(ctx, "failed to release task lock", "task_kind", task.Kind, "error", err)
			}
		}()
	}

	ctx, span := r.tracer.Start(ctx, "worker."+string(task.Kind), trace.WithAttributes(
		attribute.String("task.id", task.ID),
		attribute.String("task.kind", string(task.Kind)),
		attribute.String("task.session_id", task.SessionID),
		attribute.Int("task.attempt", task.Attempt),
	))
	defer span.End()

	taskCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.retryInitial

	result, err := backoff.Retry(taskCtx, func() ([]byte, error) {
		res, err := reg.handler(taskCtx, task)
		if err != nil && !errors.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(r.retryTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.WarnContext(taskCtx, "task failed, retrying",
				"task_kind", task.Kind,
				"session_id", task.SessionID,
				"retry_in", next.String(),
				"error", err)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if errors.IsRetryable(err) && taskCtx.Err() == nil && task.Attempt+1 < r.maxAttempts {
			slog.WarnContext(ctx, "task failed, re-enqueueing",
				"task_kind", task.Kind,
				"session_id", task.SessionID,
				"attempt", task.Attempt+1,
				"error", err)
			r.requeue(ctx, task, task.Attempt+1, r.pollInterval<<task.Attempt)
			return
		}
		slog.ErrorContext(ctx, "task failed",
			"task_kind", task.Kind,
			"session_id", task.SessionID,
			"task_id", task.ID,
			"error", err)
		return
	}

	if r.retention > 0 {
		if _, err := r.queue.StoreResult(ctx, &StoreResultInput{TaskID: task.ID, Result: result, TTL: r.retention}); err != nil {
			slog.WarnContext(ctx, "failed to store task result", "task_id", task.ID, "error", err)
		}
	}
}

func (r *Runtime) requeue(ctx context.Context, task *Task, attempt int, delay time.Duration) {
	next := *task
	next.Attempt = attempt
	if _, err := r.queue.Enqueue(context.WithoutCancel(ctx), &EnqueueInput{Task: &next, Delay: delay}); err != nil {
		slog.ErrorContext(ctx, "failed to re-enqueue task",
			"task_kind", task.Kind,
			"task_id", task.ID,
			"error", err)
	}
}
