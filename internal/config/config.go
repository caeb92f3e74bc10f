// Package config loads the service configuration from RPG_COMBAT_*
// environment variables.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// Prefix is prepended to every variable name
const Prefix = "RPG_COMBAT_"

// Config holds every tunable of the server
type Config struct {
	GRPCPort     int    `env:"GRPC_PORT" envDefault:"50051"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ArchivePath  string `env:"ARCHIVE_PATH" envDefault:"rpg-combat.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`

	QueueName       string        `env:"QUEUE_NAME" envDefault:"combat"`
	MaxConcurrent   int           `env:"MAX_CONCURRENT_TASKS" envDefault:"50"`
	JobTimeout      time.Duration `env:"JOB_TIMEOUT" envDefault:"30s"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"100ms"`
	TaskMaxAttempts int           `env:"TASK_MAX_ATTEMPTS" envDefault:"3"`
	RetryMaxTries   uint          `env:"RETRY_MAX_TRIES" envDefault:"3"`
	ResultRetention time.Duration `env:"RESULT_RETENTION" envDefault:"0s"`

	IntentTimeout         time.Duration `env:"INTENT_TIMEOUT" envDefault:"20s"`
	AIConcurrency         int           `env:"AI_CONCURRENCY" envDefault:"3"`
	BatchMin              int           `env:"BATCH_MIN" envDefault:"5"`
	BatchMax              int           `env:"BATCH_MAX" envDefault:"100"`
	BatchDivisor          int           `env:"BATCH_DIVISOR" envDefault:"200"`
	BackpressureThreshold int           `env:"BACKPRESSURE_THRESHOLD" envDefault:"500"`
	CheckpointEvery       int64         `env:"CHECKPOINT_EVERY" envDefault:"10"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("grpc_port", c.GRPCPort, 1, 65535, vb)
	errors.ValidateRequired("redis_url", c.RedisURL, vb)
	errors.ValidateRequired("queue_name", c.QueueName, vb)
	errors.ValidatePositive("max_concurrent_tasks", c.MaxConcurrent, vb)
	errors.ValidatePositive("task_max_attempts", c.TaskMaxAttempts, vb)
	errors.ValidatePositive("ai_concurrency", c.AIConcurrency, vb)
	errors.ValidatePositive("batch_min", c.BatchMin, vb)
	errors.ValidatePositive("batch_divisor", c.BatchDivisor, vb)
	errors.ValidatePositive("backpressure_threshold", c.BackpressureThreshold, vb)
	errors.ValidateEnum("log_level", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}, vb)

	if c.BatchMax < c.BatchMin {
		vb.InvalidField("batch_max", "must not be below batch_min")
	}
	if c.JobTimeout <= 0 {
		vb.InvalidField("job_timeout", "must be positive")
	}
	if c.PollInterval <= 0 {
		vb.InvalidField("poll_interval", "must be positive")
	}
	if c.IntentTimeout <= 0 {
		vb.InvalidField("intent_timeout", "must be positive")
	}
	if c.RetryMaxTries == 0 {
		vb.InvalidField("retry_max_tries", "must be positive")
	}
	if c.ResultRetention < 0 {
		vb.InvalidField("result_retention", "cannot be negative")
	}
	if c.CheckpointEvery <= 0 {
		vb.InvalidField("checkpoint_every", "must be positive")
	}

	return vb.Build()
}

// SlogLevel maps LogLevel to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
