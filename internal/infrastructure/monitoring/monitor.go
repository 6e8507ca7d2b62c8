package monitoring

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

// AlertNotifier requests an alert dispatch when a threshold is crossed.
// Implemented by the alerting dispatcher; faked in tests.
type AlertNotifier interface {
	MaybeAlert(ctx context.Context, typ constants.AlertType, route string, count, threshold int64, alertContext map[string]interface{})
}

// RequestRecord describes one completed request.
type RequestRecord struct {
	Route        string
	Status       int
	Identity     string
	Duration     time.Duration
	ErrorMessage string
	Meta         map[string]interface{}
}

// RequestMonitor records per-route traffic and error counts in rolling
// Redis buckets, emits one structured log line per request, and requests
// alerts when thresholds are crossed.
//
// The monitor is best-effort: every failure inside Record is caught and
// logged as a monitoring failure and never reaches the caller, so a store
// outage cannot fail a request that already produced its response.
type RequestMonitor struct {
	client   goredis.UniversalClient
	notifier AlertNotifier
	metrics  *Metrics
	cfg      *config.MonitorConfig
	log      logger.Logger
}

// NewRequestMonitor creates the monitor.
func NewRequestMonitor(
	client goredis.UniversalClient,
	notifier AlertNotifier,
	metrics *Metrics,
	cfg *config.MonitorConfig,
	log logger.Logger,
) *RequestMonitor {
	return &RequestMonitor{
		client:   client,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		log:      log.WithComponent("monitor"),
	}
}

// minuteBucket formats the current UTC minute, one bucket per route per
// minute. A closed bucket is never mutated again; only expiry removes it.
func minuteBucket(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04")
}

// Record must be called exactly once per completed request, as the final
// step before the response is returned.
func (m *RequestMonitor) Record(ctx context.Context, rec RequestRecord) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error(ctx, "monitoring failure", fmt.Errorf("panic: %v", r),
				logger.String("route", rec.Route),
			)
		}
	}()

	if m.metrics != nil {
		m.metrics.RecordRequest(rec.Route, strconv.Itoa(rec.Status), rec.Duration)
	}

	trafficKey := fmt.Sprintf(constants.KeyTrafficBucketFormat, rec.Route, minuteBucket(time.Now()))
	trafficCount, err := m.client.Incr(ctx, trafficKey).Result()
	if err != nil {
		m.log.Error(ctx, "monitoring failure", err, logger.String("route", rec.Route))
		return
	}
	if trafficCount == 1 {
		// Grace margin keeps the bucket readable after its minute closes.
		if err := m.client.Expire(ctx, trafficKey, m.cfg.TrafficWindow()+constants.TrafficBucketGrace).Err(); err != nil {
			m.log.Error(ctx, "monitoring failure", err, logger.String("key", trafficKey))
			return
		}
	}

	var errorCount int64
	if rec.Status >= 500 || rec.Status == 429 {
		errorKey := fmt.Sprintf(constants.KeyErrorCounterFormat, rec.Route)
		errorCount, err = m.client.Incr(ctx, errorKey).Result()
		if err != nil {
			m.log.Error(ctx, "monitoring failure", err, logger.String("route", rec.Route))
			return
		}
		if errorCount == 1 {
			if err := m.client.Expire(ctx, errorKey, m.cfg.ErrorWindow()).Err(); err != nil {
				m.log.Error(ctx, "monitoring failure", err, logger.String("key", errorKey))
				return
			}
		}
	}

	m.logRequest(ctx, rec, trafficCount, errorCount)

	if trafficCount >= m.cfg.TrafficSpikeThreshold {
		if m.metrics != nil {
			m.metrics.RecordAlertRequested(string(constants.AlertTypeTrafficSpike), rec.Route)
		}
		m.notifier.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, rec.Route,
			trafficCount, m.cfg.TrafficSpikeThreshold,
			map[string]interface{}{"window_seconds": m.cfg.TrafficWindowSeconds})
	}

	if errorCount >= m.cfg.ErrorBurstThreshold {
		if m.metrics != nil {
			m.metrics.RecordAlertRequested(string(constants.AlertTypeErrorBurst), rec.Route)
		}
		m.notifier.MaybeAlert(ctx, constants.AlertTypeErrorBurst, rec.Route,
			errorCount, m.cfg.ErrorBurstThreshold,
			map[string]interface{}{"window_seconds": m.cfg.ErrorWindowSeconds})
	}
}

func (m *RequestMonitor) logRequest(ctx context.Context, rec RequestRecord, trafficCount, errorCount int64) {
	fields := []logger.Field{
		logger.String("event", "api_request"),
		logger.String("route", rec.Route),
		logger.Int("status", rec.Status),
		logger.String("ip", rec.Identity),
		logger.Duration("duration_ms", rec.Duration),
		logger.Int64("traffic_count_minute", trafficCount),
		logger.Int64("error_count_window", errorCount),
	}
	if rec.ErrorMessage != "" {
		fields = append(fields, logger.String("error_message", rec.ErrorMessage))
	}
	if len(rec.Meta) > 0 {
		fields = append(fields, logger.Any("meta", rec.Meta))
	}

	if rec.Status >= 500 || rec.Status == 429 {
		m.log.Warn(ctx, "api request", fields...)
	} else {
		m.log.Info(ctx, "api request", fields...)
	}
}
