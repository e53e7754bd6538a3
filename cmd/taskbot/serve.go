package main

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskbot/api/handler"
	"github.com/fastygo/taskbot/internal/infrastructure/journal"
	"github.com/fastygo/taskbot/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskbot/internal/infrastructure/redis"
	"github.com/fastygo/taskbot/internal/middleware"
	"github.com/fastygo/taskbot/internal/router"
	"github.com/fastygo/taskbot/internal/services"
	"github.com/fastygo/taskbot/internal/services/lifecycle"
	"github.com/fastygo/taskbot/pkg/httpcontext"
	redisRepo "github.com/fastygo/taskbot/repository/redis"
	"github.com/fastygo/taskbot/usecase/maintenance"
	taskUC "github.com/fastygo/taskbot/usecase/task"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP command webhook on Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, zapLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required to serve")
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(parent)
	defer stop()

	st, err := openStores(appCtx, cfg, true, zapLogger)
	if err != nil {
		return err
	}
	manager.Register("postgres", func(ctx context.Context) error {
		return st.close()
	})

	opts := []taskUC.Option{
		taskUC.WithPrefix(cfg.Commands.Prefix),
		taskUC.WithOwnerScopedLookup(cfg.Commands.OwnerScopedLookup),
		taskUC.WithDefaultRetention(cfg.Retention.Default),
	}

	var redisClient *redislib.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, cfg.AppName, zapLogger)
		if err != nil {
			_ = manager.Shutdown(context.Background())
			return err
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		opts = append(opts, taskUC.WithRateLimiter(
			redisRepo.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)))
	}

	var journalStore *journal.Store
	var exchanges apiHandler.ExchangeSource
	if cfg.Journal.Enabled {
		journalStore, err = journal.Open(cfg.Journal.Path, "")
		if err != nil {
			_ = manager.Shutdown(context.Background())
			return err
		}
		manager.Register("journal", func(ctx context.Context) error {
			return journalStore.Close()
		})
		opts = append(opts, taskUC.WithJournal(journalStore))
		exchanges = journalStore
	}

	deps := monitor.Dependencies{Store: st.pool}
	if redisClient != nil {
		deps.Redis = monitor.RedisPinger(redisClient)
	}
	if journalStore != nil {
		deps.Journal = journalStore
	}
	mon := monitor.New(deps, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskUseCase := taskUC.New(st.tasks, st.settings, zapLogger, opts...)
	maintenanceUseCase := maintenance.New(st.tasks, st.settings, cfg.Retention.Default, zapLogger)

	var cleaner services.JournalCleaner
	if journalStore != nil {
		cleaner = journalStore
	}
	scheduler, err := services.NewScheduler(maintenanceUseCase, cleaner, mon, zapLogger, services.SchedulerConfig{
		Interval:         cfg.Retention.Interval,
		Spec:             cfg.Retention.Schedule,
		JournalRetention: time.Duration(cfg.Journal.RetentionHours) * time.Hour,
	})
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}
	scheduler.Start()
	manager.Register("scheduler", func(ctx context.Context) error {
		scheduler.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Command:   apiHandler.NewCommandHandler(taskUseCase, cfg.JWT.PrivilegedRoles, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Exchanges: apiHandler.NewExchangeHandler(exchanges, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{Metrics: cfg.HTTP.EnableMetrics})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.Strings("commands", taskUseCase.Commands()))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	var runErr error
	select {
	case <-appCtx.Done():
	case runErr = <-manager.Errors():
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	return runErr
}
