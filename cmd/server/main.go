package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appservice "github.com/turtacn/stockwatch/internal/application/service"
	"github.com/turtacn/stockwatch/internal/config"
	domainservice "github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/internal/infrastructure/cache"
	"github.com/turtacn/stockwatch/internal/infrastructure/crypto"
	"github.com/turtacn/stockwatch/internal/infrastructure/events"
	"github.com/turtacn/stockwatch/internal/infrastructure/identity"
	"github.com/turtacn/stockwatch/internal/infrastructure/marketdata"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/stockwatch/internal/infrastructure/persistence/redis"
	"github.com/turtacn/stockwatch/internal/infrastructure/ratelimit"
	"github.com/turtacn/stockwatch/internal/interfaces/http"
	"github.com/turtacn/stockwatch/internal/interfaces/http/handlers"
	"github.com/turtacn/stockwatch/internal/interfaces/http/middleware"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/logger"
)

func main() {
	ctx := context.Background()

	// Logger for startup
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	// Load config
	loader := config.NewLoader(startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	loader.Watch(func(next *config.Config) {
		appLogger.SetLevel(next.Log.Level)
	})

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, cfg.Server.Environment, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	// Signing secret, from Vault when enabled
	secrets, err := crypto.NewSecretSource(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create secret source", err)
	}
	secret, err := secrets.SigningSecret(ctx)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to resolve signing secret", err)
	}
	codec, err := crypto.NewTokenCodec(secret, cfg.Auth.TokenTTL)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create token codec", err)
	}

	// Initialize database
	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to database", err)
	}
	users := postgres.NewCachedUserRepository(postgres.NewUserRepository(db.DB(), appLogger), cfg.Cache.UserTTL)
	stocks := postgres.NewWatchlistRepository(db.DB(), appLogger)

	// Response cache, shared through Redis when configured
	var redisConn *redis.RedisConnection
	var store cache.Store
	if cfg.Cache.Backend == constants.CacheBackendRedis {
		redisConn = redis.NewRedisConnection(&cfg.Redis, appLogger)
		if err := redisConn.Connect(ctx); err != nil {
			appLogger.Fatal(ctx, "Failed to connect to Redis", err)
		}
		store = cache.NewRedisStore(redisConn.Client(), constants.RedisCacheKeyPrefix)
	} else {
		memStore, err := cache.NewMemoryStore(cfg.Cache.MaxEntries)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to create cache store", err)
		}
		store = memStore
	}
	responseCache := cache.New(store, cache.Options{
		DefaultTTL:   cfg.Cache.DefaultTTL,
		SingleFlight: cfg.Cache.SingleFlight,
	}, appLogger, metrics)

	// Market data
	fmp := marketdata.NewFMPClient(&cfg.Market, appLogger, tracing, metrics)
	market := appservice.NewCachedMarketService(appservice.NewMarketService(fmp, appLogger), responseCache, cfg.Cache)

	// Domain events
	var publisher domainservice.EventPublisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, appLogger, metrics)
	} else {
		publisher = events.NewNoopPublisher(appLogger)
	}

	verifier := identity.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientID, appLogger)

	// Initialize application services
	authSvc := appservice.NewAuthAppService(verifier, users, codec, publisher, appLogger)
	watchlistSvc := appservice.NewWatchlistAppService(users, stocks, fmp, market, publisher, appLogger)

	guard := middleware.NewGuard(codec, cfg.Auth.IdentityClaim, appLogger, metrics)
	limiter := newLimiter(cfg, redisConn, appLogger)

	deps := map[string]handlers.Pinger{"database": db}
	if redisConn != nil {
		deps["redis"] = redisConn
	}

	router := http.NewRouter(cfg, appLogger, http.Handlers{
		Health:    handlers.NewHealthHandler(deps, appLogger),
		Market:    handlers.NewMarketHandler(market, appLogger),
		Watchlist: handlers.NewWatchlistHandler(watchlistSvc, appLogger),
		Auth:      handlers.NewAuthHandler(authSvc, appLogger),
	}, guard, limiter, tracing, metrics, registry)

	go func() {
		if err := router.Start(); err != nil {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
	}
	if err := publisher.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Event publisher close failed", err)
	}
	if redisConn != nil {
		_ = redisConn.Close()
	}
	_ = db.Close()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Tracer shutdown failed", err)
	}
	appLogger.Info(shutdownCtx, "Server stopped")
}

// newLimiter returns nil when rate limiting is disabled.
func newLimiter(cfg *config.Config, redisConn *redis.RedisConnection, log logger.Logger) ratelimit.Limiter {
	if cfg.Server.RateLimitRPS <= 0 {
		return nil
	}
	rlCfg := ratelimit.Config{Rate: cfg.Server.RateLimitRPS, Burst: cfg.Server.RateLimitBurst}
	if redisConn != nil {
		limiter, err := ratelimit.NewRedisRateLimiter(redisConn.Client(), rlCfg, log, ratelimit.WithLocalFallback())
		if err == nil {
			return limiter
		}
		log.Warn(context.Background(), "Falling back to in-process rate limiting", logger.Error(err))
	}
	return ratelimit.NewLocalLimiter(rlCfg)
}
