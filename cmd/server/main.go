package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/printstarter/printstarter/internal/application/service"
	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/internal/infrastructure/alerting"
	"github.com/printstarter/printstarter/internal/infrastructure/cache"
	"github.com/printstarter/printstarter/internal/infrastructure/llm"
	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
	"github.com/printstarter/printstarter/internal/infrastructure/ratelimit"
	"github.com/printstarter/printstarter/internal/infrastructure/redis"
	"github.com/printstarter/printstarter/internal/interfaces/http/handlers"
	httprouter "github.com/printstarter/printstarter/internal/interfaces/http/router"
	"github.com/printstarter/printstarter/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}

	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Error(ctx, "initialize tracing", err)
		log.Fatalf("initialize tracing: %v", err)
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	redisConn, err := redis.NewConnection(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Error(ctx, "connect to redis", err)
		log.Fatalf("connect to redis: %v", err)
	}
	defer redisConn.Close()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	limiter := ratelimit.NewFixedWindowLimiter(redisConn.Client, appLogger)
	semanticCache := cache.NewSemanticCache(redisConn.Client, &cfg.Cache, appLogger)

	sinks := buildSinks(cfg, appLogger)
	dispatcher := alerting.NewDispatcher(redisConn.Client, sinks, cfg.Alerting.Cooldown(), appLogger)
	monitor := monitoring.NewRequestMonitor(redisConn.Client, dispatcher, metrics, &cfg.Monitor, appLogger)

	llmClient := llm.NewClient(&cfg.Upstream, appLogger)

	suggestionSvc := service.NewSuggestionService(semanticCache, llmClient, metrics, cfg.Cache.TTL(), appLogger)
	ideaSvc := service.NewIdeaService(semanticCache, llmClient, metrics, cfg.Cache.TTL(), appLogger)

	router := httprouter.NewRouter(
		cfg,
		appLogger,
		handlers.NewHealthHandler(redisConn, appLogger),
		handlers.NewPromptsHandler(suggestionSvc, appLogger),
		handlers.NewGenerateHandler(ideaSvc, appLogger),
		handlers.NewAlertHandler(dispatcher, cfg.Alerting.TestToken, appLogger),
		limiter,
		monitor,
		metrics,
		tracing.Tracer(),
	)

	if err := router.Start(); err != nil {
		appLogger.Error(ctx, "http server failed", err)
		log.Fatalf("http server: %v", err)
	}
}

// buildSinks wires every alert destination the configuration enables.
// No sinks configured is valid: alerts are still logged by the monitor.
func buildSinks(cfg *config.Config, appLogger logger.Logger) []alerting.Sink {
	var sinks []alerting.Sink

	if cfg.Alerting.WebhookURL != "" {
		sinks = append(sinks, alerting.NewWebhookSink(cfg.Alerting.WebhookURL))
	}

	if cfg.Alerting.SMTP.Configured() {
		emailSink, err := alerting.NewEmailSink(&cfg.Alerting.SMTP, &cfg.Alerting.Email)
		if err != nil {
			appLogger.Warn(context.Background(), "email sink disabled", logger.Err(err))
		} else {
			sinks = append(sinks, emailSink)
		}
	}

	if cfg.Alerting.Kafka.Configured() {
		sinks = append(sinks, alerting.NewKafkaSink(&cfg.Alerting.Kafka))
	}

	return sinks
}
