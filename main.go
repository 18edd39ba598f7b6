// Package main provides the entry point for the radio contracts API
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/radio-contracts/app/handlers"
	"github.com/amirphl/radio-contracts/app/middleware"
	"github.com/amirphl/radio-contracts/app/router"
	"github.com/amirphl/radio-contracts/app/scheduler"
	"github.com/amirphl/radio-contracts/app/services"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/amirphl/radio-contracts/config"
	"github.com/amirphl/radio-contracts/migrations"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	accessLog, closeLog := setupLogging(cfg.Logging)
	defer closeLog()

	log.Info().
		Str("environment", cfg.Deployment.Environment).
		Str("version", cfg.Deployment.Version).
		Msg("Starting radio contracts API")

	app, err := initializeApplication(cfg, accessLog)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-sigChan
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	// Workers and pools stop after the server drains
	for _, fn := range app.stopFuncs {
		fn()
	}

	log.Info().Msg("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:  newGormLogger(cfg),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("Database connection established")

	if cfg.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		applied, err := migrations.Apply(ctx, sqlDB)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info().Int("applied", applied).Msg("Database schema up to date")
	}

	return db, nil
}

// initializeCache initializes the cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Int("db", cfg.RedisDB).Msg("Redis connection established")
	return rc, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, accessLog io.Writer) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stopFuncs = append(stopFuncs, func() { _ = sqlDB.Close() })

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	healthChecks := map[string]router.HealthCheck{
		"database": sqlDB.PingContext,
	}

	var revocations services.RevocationStore
	if rc != nil {
		revocations = services.NewRedisRevocationStore(rc, cfg.Cache.RedisPrefix)
		ping := func(ctx context.Context) error { return rc.Ping(ctx).Err() }
		healthChecks["cache"] = ping
		stopFuncs = append(stopFuncs,
			scheduler.StartCacheHealthMonitor(context.Background(), scheduler.PingerFunc(ping), cfg.Cache.HealthCheckInterval),
			func() { _ = rc.Close() },
		)
	} else {
		revocations = services.NewMemoryRevocationStore()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	programRepo := repository.NewRadioProgramRepository(db)
	adTypeRepo := repository.NewAdTypeRepository(db)
	contractRepo := repository.NewContractRepository(db)
	counterRepo := repository.NewSequenceCounterRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	uow := repository.NewUnitOfWork(db)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		revocations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Info().Str("issuer", cfg.JWT.Issuer).Str("audience", cfg.JWT.Audience).Msg("Token service initialized")

	hasher := services.NewBcryptHasher(cfg.Security.BcryptCost)

	if cfg.Bootstrap.Enabled() {
		if err := ensureBootstrapAdmin(context.Background(), userRepo, hasher, cfg.Bootstrap); err != nil {
			return nil, fmt.Errorf("failed to ensure bootstrap admin: %w", err)
		}
	}

	// Flows
	numberer := businessflow.NewContractNumberingService(counterRepo, contractRepo)
	authFlow := businessflow.NewAuthFlow(userRepo, auditRepo, tokenService, hasher)
	sessionFlow := businessflow.NewSessionFlow(userRepo, tokenService)
	userFlow := businessflow.NewUserFlow(userRepo, auditRepo, hasher)
	clientFlow := businessflow.NewClientFlow(clientRepo, contractRepo, auditRepo, uow)
	referenceFlow := businessflow.NewReferenceFlow(programRepo, adTypeRepo)
	contractFlow := businessflow.NewContractFlow(contractRepo, clientRepo, programRepo, adTypeRepo, auditRepo, numberer, uow)

	// Handlers
	v := handlers.NewValidator()
	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Auth:      handlers.NewAuthHandler(authFlow, v),
		User:      handlers.NewUserHandler(userFlow, v),
		Client:    handlers.NewClientHandler(clientFlow, v),
		Contract:  handlers.NewContractHandler(contractFlow, v),
		Reference: handlers.NewReferenceHandler(referenceFlow, v),
	}, middleware.NewAuthMiddleware(sessionFlow), healthChecks, accessLog)

	if cfg.Scheduler.Enabled {
		expiry := scheduler.NewContractExpiryScheduler(contractFlow, cfg.Scheduler.ExpiryInterval, cfg.Scheduler.ExpiryRunOnBoot)
		// stop the scheduler before the pool closes
		stopFuncs = append([]func(){expiry.Start(context.Background())}, stopFuncs...)
	}

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
