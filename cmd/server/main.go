package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	agentapp "github.com/vansales/backend/internal/application/agent"
	identityapp "github.com/vansales/backend/internal/application/identity"
	inventoryapp "github.com/vansales/backend/internal/application/inventory"
	partnerapp "github.com/vansales/backend/internal/application/partner"
	tradeapp "github.com/vansales/backend/internal/application/trade"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/cache"
	"github.com/vansales/backend/internal/infrastructure/config"
	"github.com/vansales/backend/internal/infrastructure/logger"
	"github.com/vansales/backend/internal/infrastructure/persistence"
	"github.com/vansales/backend/internal/infrastructure/telemetry"
	"github.com/vansales/backend/internal/interfaces/http/handler"
	"github.com/vansales/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting van-sales backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracer, err := telemetry.NewProvider(context.Background(), cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if tracer.Enabled() {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.DBName); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Redis backs token revocation and the idempotency fast path. When it is
	// unreachable the process still starts: the durable unique index keeps
	// dispatch correct and revocation degrades to in-memory.
	var (
		blacklist auth.TokenBlacklist
		dedupe    shared.IdempotencyStore
	)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory fallbacks", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
		dedupe = cache.NewInMemoryIdempotencyStore()
	} else {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		dedupe = cache.NewRedisIdempotencyStore(redisClient, "vansales:idem:")
		log.Info("Redis connected")
	}
	cancelPing()

	jwtService := auth.NewJWTService(cfg.JWT)

	registry, err := agentapp.BuildRegistry()
	if err != nil {
		log.Fatal("Failed to build capability registry", zap.Error(err))
	}
	executor := agentapp.NewExecutor()
	actionRepo := persistence.NewActionRepository(db.DB)
	auditLogger := persistence.NewBestEffortAuditLogger(persistence.NewAuditRepository(db.DB))

	dispatchService := agentapp.NewDispatchService(db.DB, actionRepo, registry, executor, dedupe, auditLogger, cfg.Agent)
	confirmationService := agentapp.NewConfirmationService(db.DB, actionRepo, registry, executor, auditLogger, cfg.Agent)

	handlers := router.Handlers{
		System:    handler.NewSystemHandler(db.DB),
		Auth:      handler.NewAuthHandler(identityapp.NewAuthService(db.DB, jwtService, blacklist)),
		Agent:     handler.NewAgentHandler(dispatchService, confirmationService, registry),
		Customer:  handler.NewCustomerHandler(partnerapp.NewCustomerService(db.DB)),
		Order:     handler.NewOrderHandler(tradeapp.NewOrderService(db.DB)),
		Inventory: handler.NewInventoryHandler(inventoryapp.NewInventoryService(db.DB)),
		Identity:  handler.NewIdentityHandler(identityapp.NewUserService(db.DB)),
	}

	engine := router.New(router.Dependencies{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Blacklist:  blacklist,
	}, handlers)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
	_ = redisClient.Close()
	log.Info("Server stopped")
}
