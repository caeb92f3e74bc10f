package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-combat/internal/config"
	"github.com/KirkDiggler/rpg-combat/internal/engine"
	"github.com/KirkDiggler/rpg-combat/internal/gamedata"
	"github.com/KirkDiggler/rpg-combat/internal/handlers/combat/v1alpha1"
	"github.com/KirkDiggler/rpg-combat/internal/observability"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/collector"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/executor"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/turn"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-combat/internal/redis"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	"github.com/KirkDiggler/rpg-combat/internal/services/notifier"
	"github.com/KirkDiggler/rpg-combat/internal/worker"
)

var (
	grpcPort    int
	redisURL    string
	archivePath string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server and the combat worker",
	Long:  `Start the combat gRPC service together with the worker runtime that drives battles. Flags override RPG_COMBAT_* environment variables.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().StringVar(&redisURL, "redis-url", "", "redis URL of the hot cache and task queue")
	serverCmd.Flags().StringVar(&archivePath, "archive-path", "", "sqlite file of the battle archive")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.GRPCPort = grpcPort
	}
	if cmd.Flags().Changed("redis-url") {
		cfg.RedisURL = redisURL
	}
	if cmd.Flags().Changed("archive-path") {
		cfg.ArchivePath = archivePath
	}
	return cfg, cfg.Validate()
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	redisClient, err := redis.NewClientFromURL(cfg.RedisURL, &redis.Options{PoolSize: cfg.MaxConcurrent + 10})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis is unreachable: %w", err)
	}

	store, err := archive.Open(ctx, &archive.Config{Path: cfg.ArchivePath, Clock: clock.New()})
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = store.Close() }()

	combatTurn, runtime, err := buildCombat(cfg, redisClient, store)
	if err != nil {
		return err
	}

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{TurnService: combatTurn})
	if err != nil {
		return fmt.Errorf("failed to create combat handler: %w", err)
	}

	srv := newGRPCServer()
	v1alpha1.RegisterCombatServiceServer(srv, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("gRPC server starting", "port", cfg.GRPCPort)
		return srv.Serve(lis)
	})
	g.Go(func() error {
		slog.Info("combat worker starting",
			"queue", cfg.QueueName,
			"max_concurrent", cfg.MaxConcurrent)
		return runtime.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		healthServer.Shutdown()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			slog.Info("server stopped gracefully")
		case <-time.After(30 * time.Second):
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// buildCombat wires the combat loop: hot cache, engine, collector,
// executor, task queue, runtime and turn manager.
func buildCombat(cfg *config.Config, redisClient redis.Client, store archive.Repository) (turn.Service, *worker.Runtime, error) {
	registry, err := gamedata.LoadDefault()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load game data: %w", err)
	}
	eng, err := engine.New(&engine.Config{Registry: registry})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}

	repo := battle.NewRedisRepository(redisClient)

	coll, err := collector.NewOrchestrator(&collector.Config{
		Repository:            repo,
		Engine:                eng,
		Batch:                 collector.BatchBounds{Min: cfg.BatchMin, Max: cfg.BatchMax, Divisor: cfg.BatchDivisor},
		BackpressureThreshold: cfg.BackpressureThreshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create collector: %w", err)
	}

	exec, err := executor.NewOrchestrator(&executor.Config{
		Repository:      repo,
		Engine:          eng,
		Archive:         store,
		CheckpointEvery: cfg.CheckpointEvery,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create executor: %w", err)
	}

	queue, err := worker.NewRedisQueue(&worker.RedisQueueConfig{
		Client: redisClient,
		Name:   cfg.QueueName,
		Clock:  clock.New(),
		IDGen:  idgen.NewUUID("task"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task queue: %w", err)
	}

	runtime, err := worker.NewRuntime(&worker.RuntimeConfig{
		Queue:         queue,
		MaxConcurrent: cfg.MaxConcurrent,
		JobTimeout:    cfg.JobTimeout,
		PollInterval:  cfg.PollInterval,
		MaxAttempts:   cfg.TaskMaxAttempts,
		RetryTries:    cfg.RetryMaxTries,
		Retention:     cfg.ResultRetention,
		Tracer:        observability.Tracer("github.com/KirkDiggler/rpg-combat/internal/worker"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create worker runtime: %w", err)
	}

	notif, err := notifier.NewService(&notifier.Config{EventBus: events.NewBus()})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	combatTurn, err := turn.NewOrchestrator(&turn.Config{
		Repository:    repo,
		Archive:       store,
		Engine:        eng,
		Collector:     coll,
		Executor:      exec,
		Queue:         queue,
		Notifier:      notif,
		IDGenerator:   idgen.NewUUID("mv"),
		IntentTimeout: cfg.IntentTimeout,
		AIConcurrency: cfg.AIConcurrency,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create turn manager: %w", err)
	}
	combatTurn.RegisterTasks(runtime)

	return combatTurn, runtime, nil
}

func newGRPCServer() *grpc.Server {
	logger := grpc_logging.LoggerFunc(logFunc)
	recovery := grpc_recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		slog.ErrorContext(ctx, "panic in handler", "panic", p)
		return status.Errorf(codes.Internal, "internal error")
	})

	return grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(logger),
			grpc_recovery.UnaryServerInterceptor(recovery),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(logger),
			grpc_recovery.StreamServerInterceptor(recovery),
		),
	)
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
