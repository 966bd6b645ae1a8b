// Command taskd runs the task-tracking API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/taskd/internal/account"
	"github.com/kbukum/taskd/internal/api"
	"github.com/kbukum/taskd/internal/auth/jwt"
	"github.com/kbukum/taskd/internal/auth/password"
	"github.com/kbukum/taskd/internal/config"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/observability"
	"github.com/kbukum/taskd/internal/server"
	"github.com/kbukum/taskd/internal/server/middleware"
	"github.com/kbukum/taskd/internal/store"
	"github.com/kbukum/taskd/internal/task"
)

const (
	serviceName = "taskd"
	version     = "0.1.0"
	pingTimeout = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault(serviceName).Fatal("Configuration error", logger.Fields(
			logger.FieldError, err.Error(),
		))
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Service failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Tracing and metrics export only when an OTLP endpoint is configured.
	if cfg.Observability.Endpoint != "" {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			SampleRate:     cfg.Observability.SampleRate,
		})
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		mp, err := observability.InitMeter(ctx, observability.MeterConfig{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
		})
		if err != nil {
			return err
		}
		defer func() { _ = mp.Shutdown(context.Background()) }()
	}

	db, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(&store.User{}, &store.Task{}); err != nil {
		return err
	}

	tokens, err := jwt.NewService(cfg.JWT)
	if err != nil {
		return err
	}
	hasher := password.NewHasher(cfg.Password)

	accounts := account.NewService(store.NewUserStore(db), hasher, tokens, log)
	tasks := task.NewService(store.NewTaskStore(db), log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	if cfg.Observability.Endpoint != "" {
		metrics, err := observability.NewRequestMetrics(observability.Meter(serviceName))
		if err != nil {
			return err
		}
		srv.GinEngine().Use(middleware.Metrics(metrics))
	}

	api.Register(srv.GinEngine(), api.Routes{
		Auth:   api.NewAuthHandler(accounts),
		Tasks:  api.NewTaskHandler(tasks),
		Tokens: tokens,
		Health: api.HealthCheck(func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			defer cancel()
			return db.PingContext(pingCtx)
		}),
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return srv.Stop(context.Background())
}
