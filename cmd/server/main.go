package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apptracking "github.com/oms/backend/internal/application/tracking"
	"github.com/oms/backend/internal/infrastructure/cmt"
	"github.com/oms/backend/internal/infrastructure/config"
	"github.com/oms/backend/internal/infrastructure/logger"
	"github.com/oms/backend/internal/infrastructure/messaging"
	"github.com/oms/backend/internal/infrastructure/persistence"
	"github.com/oms/backend/internal/infrastructure/scheduler"
	"github.com/oms/backend/internal/interfaces/http/handler"
	"github.com/oms/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}

	// Middleware feed client
	feedConfig := cmt.NewConfig(cfg.CMT.Endpoint)
	feedConfig.Timeout = cfg.CMT.Timeout
	feed, err := cmt.NewClient(feedConfig)
	if err != nil {
		log.Fatal("Failed to create middleware client", zap.Error(err))
	}

	// Repositories and dispatcher
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	carrierRepo := persistence.NewGormCarrierRepository(db.DB)
	statusRepo := persistence.NewGormTransportationStatusRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)
	dispatcher := messaging.NewRedisDispatcher(redisClient, cfg.Redis.Stream, log)

	// Application service
	syncService := apptracking.NewSyncService(apptracking.SyncServiceConfig{
		Feed:       feed,
		Tenants:    tenantRepo,
		Orders:     orderRepo,
		Shipments:  shipmentRepo,
		Carriers:   carrierRepo,
		Statuses:   statusRepo,
		Dispatcher: dispatcher,
		Tx:         txManager,
		Endpoint:   cfg.CMT.Endpoint,
		Lookback:   cfg.Sync.Lookback,
		Logger:     log,
	})

	// Background trigger
	var trigger *scheduler.SyncTrigger
	if cfg.Sync.Enabled {
		trigger = scheduler.NewSyncTrigger(scheduler.SyncTriggerConfig{
			Interval: cfg.Sync.Interval,
		}, syncService, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync trigger", zap.Error(err))
		}
	}

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))

	handler.NewHealthHandler(map[string]handler.CheckFunc{
		"database": func(context.Context) error { return db.Ping() },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}).RegisterRoutes(engine)

	router.NewRouter(engine).
		Register(handler.NewTrackingHandler(syncService, log)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if trigger != nil {
		if err := trigger.Stop(ctx); err != nil {
			log.Error("Failed to stop sync trigger", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
