package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
	"github.com/printstarter/printstarter/internal/infrastructure/ratelimit"
	"github.com/printstarter/printstarter/internal/interfaces/http/handlers"
	"github.com/printstarter/printstarter/internal/interfaces/http/middleware"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

// Router wires the HTTP surface: governed API endpoints, health probes,
// metrics and optional pprof.
type Router struct {
	engine          *gin.Engine
	config          *config.Config
	logger          logger.Logger
	healthHandler   *handlers.HealthHandler
	promptsHandler  *handlers.PromptsHandler
	generateHandler *handlers.GenerateHandler
	alertHandler    *handlers.AlertHandler
	limiter         *ratelimit.FixedWindowLimiter
	monitor         *monitoring.RequestMonitor
	metrics         *monitoring.Metrics
	tracer          trace.Tracer
	server          *http.Server
}

// NewRouter creates the router.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	promptsHandler *handlers.PromptsHandler,
	generateHandler *handlers.GenerateHandler,
	alertHandler *handlers.AlertHandler,
	limiter *ratelimit.FixedWindowLimiter,
	monitor *monitoring.RequestMonitor,
	metrics *monitoring.Metrics,
	tracer trace.Tracer,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:          gin.New(),
		config:          cfg,
		logger:          log,
		healthHandler:   healthHandler,
		promptsHandler:  promptsHandler,
		generateHandler: generateHandler,
		alertHandler:    alertHandler,
		limiter:         limiter,
		monitor:         monitor,
		metrics:         metrics,
		tracer:          tracer,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", constants.HeaderRequestID, constants.HeaderAlertTestToken},
		ExposeHeaders: []string{
			constants.HeaderRequestID,
			constants.HeaderRateLimitLimit,
			constants.HeaderRateLimitRemaining,
			constants.HeaderRateLimitWindow,
		},
		MaxAge: 12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	r.engine.Use(middleware.RequestContext())
	r.engine.Use(middleware.Tracing(r.tracer))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	window := r.config.RateLimit.Window()
	api := r.engine.Group("/api")
	{
		api.POST("/prompts",
			middleware.Monitor(r.monitor, constants.RouteAPIPrompts),
			middleware.RateLimit(r.limiter, constants.ScopePrompts,
				r.config.RateLimit.PromptLimit, window, r.metrics, r.logger),
			r.promptsHandler.Suggest,
		)
		api.POST("/generate",
			middleware.Monitor(r.monitor, constants.RouteAPIGenerate),
			middleware.RateLimit(r.limiter, constants.ScopeGenerate,
				r.config.RateLimit.GenerateLimit, window, r.metrics, r.logger),
			r.generateHandler.Generate,
		)
		api.POST("/test-alert",
			middleware.Monitor(r.monitor, constants.RouteAPITestAlert),
			r.alertHandler.TestAlert,
		)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})
}

// Start runs the HTTP server until shutdown.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := r.config.Server.Addr()
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting http server", logger.String("address", addr))

	go r.gracefulShutdown()

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (r *Router) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	r.logger.Info(context.Background(), "shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Error(context.Background(), "server forced to shutdown", err)
	}
}

// Stop shuts the server down explicitly.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
