package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/internal/infrastructure/ratelimit"
	"github.com/turtacn/stockwatch/internal/interfaces/http/handlers"
	"github.com/turtacn/stockwatch/internal/interfaces/http/middleware"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// Handlers 汇总所有 HTTP 处理器
type Handlers struct {
	Health    *handlers.HealthHandler
	Market    *handlers.MarketHandler
	Watchlist *handlers.WatchlistHandler
	Auth      *handlers.AuthHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	logger   logger.Logger
	handlers Handlers
	guard    *middleware.Guard
	limiter  ratelimit.Limiter
	tracing  *monitoring.TracingManager
	metrics  *monitoring.Metrics
	gatherer prometheus.Gatherer

	mu     sync.Mutex
	server *http.Server
}

// NewRouter 创建路由器。limiter 为 nil 时不限流
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	h Handlers,
	guard *middleware.Guard,
	limiter ratelimit.Limiter,
	tracing *monitoring.TracingManager,
	metrics *monitoring.Metrics,
	gatherer prometheus.Gatherer,
) *Router {
	// 设置 Gin 模式
	if cfg.Server.Environment == constants.EnvironmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("http"),
		handlers: h,
		guard:    guard,
		limiter:  limiter,
		tracing:  tracing,
		metrics:  metrics,
		gatherer: gatherer,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(r.tracing, r.metrics))
	r.engine.Use(middleware.Logging(r.logger))
	r.engine.Use(cors.New(r.corsConfig()))
	if r.limiter != nil {
		r.engine.Use(middleware.RateLimit(r.limiter, r.logger, r.metrics))
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, Backend connected!")
	})

	// 健康检查路由（不需要认证）
	r.engine.GET("/health", r.handlers.Health.HealthCheck)
	r.engine.GET("/ready", r.handlers.Health.ReadinessCheck)
	r.engine.GET("/live", r.handlers.Health.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Server.Environment != constants.EnvironmentProduction {
		pprof.Register(r.engine)
	}

	api := r.engine.Group("/api")
	{
		// 行情数据（公开，可被客户端缓存）
		market := api.Group("", middleware.ETagCache(r.config.Cache.DefaultTTL))
		{
			market.GET("/popular_stocks", r.handlers.Market.PopularStocks)
			market.GET("/stocks/:symbol", r.handlers.Market.Stock)
			market.GET("/stocks/:symbol/detail", r.handlers.Market.StockDetail)
			market.GET("/search", r.handlers.Market.Search)
		}

		api.POST("/auth/google", r.handlers.Auth.Login)

		// 需要认证的路由
		authed := api.Group("", r.guard.Middleware())
		{
			authed.GET("/user/profile", r.handlers.Auth.Profile)
			authed.GET("/stocks/saved", r.handlers.Watchlist.List)
			authed.POST("/stocks/saved/:symbol", r.handlers.Watchlist.Save)
			authed.DELETE("/stocks/saved/:symbol", r.handlers.Watchlist.Remove)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "The requested resource was not found",
			"code":    "not_found",
		})
	})
}

func (r *Router) corsConfig() cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID, "If-None-Match"},
		ExposeHeaders:    []string{constants.HeaderRequestID, "ETag", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range r.config.Server.AllowedOrigins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowCredentials = false
			return corsConfig
		}
	}
	corsConfig.AllowOrigins = r.config.Server.AllowedOrigins
	return corsConfig
}

// Engine exposes the configured handler, mainly for tests.
func (r *Router) Engine() http.Handler {
	return r.engine
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := r.config.Server.Address()
	server := &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	r.mu.Lock()
	r.server = server
	r.mu.Unlock()

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", addr))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.mu.Lock()
	server := r.server
	r.mu.Unlock()
	if server == nil {
		return nil
	}

	r.logger.Info(ctx, "Stopping HTTP server...")
	return server.Shutdown(ctx)
}

//Personal.AI order the ending
