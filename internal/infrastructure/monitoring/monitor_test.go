package monitoring_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []fakeAlert
}

type fakeAlert struct {
	Type      constants.AlertType
	Route     string
	Count     int64
	Threshold int64
}

func (f *fakeNotifier) MaybeAlert(ctx context.Context, typ constants.AlertType, route string, count, threshold int64, alertContext map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeAlert{Type: typ, Route: route, Count: count, Threshold: threshold})
}

func (f *fakeNotifier) alerts() []fakeAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeAlert(nil), f.calls...)
}

func monitorConfig() *config.MonitorConfig {
	return &config.MonitorConfig{
		TrafficWindowSeconds:  60,
		ErrorWindowSeconds:    300,
		TrafficSpikeThreshold: 5,
		ErrorBurstThreshold:   3,
	}
}

func newMonitor(t *testing.T) (*monitoring.RequestMonitor, *fakeNotifier, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	notifier := &fakeNotifier{}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	mon := monitoring.NewRequestMonitor(client, notifier, metrics, monitorConfig(), logger.NewNoopLogger())
	return mon, notifier, mr
}

func record(route string, status int) monitoring.RequestRecord {
	return monitoring.RequestRecord{
		Route:    route,
		Status:   status,
		Identity: "203.0.113.7",
		Duration: 25 * time.Millisecond,
	}
}

func trafficKey(route string) string {
	return fmt.Sprintf("metrics:traffic:%s:%s", route, time.Now().UTC().Format("2006-01-02T15:04"))
}

func TestRecordIncrementsTrafficBucket(t *testing.T) {
	mon, _, mr := newMonitor(t)
	ctx := context.Background()

	mon.Record(ctx, record("api_prompts", 200))
	mon.Record(ctx, record("api_prompts", 200))

	key := trafficKey("api_prompts")
	val, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	// TTL is the traffic window plus the grace margin.
	assert.InDelta(t, 90, mr.TTL(key).Seconds(), 1)
}

func TestRecordCountsFailuresAndRateLimits(t *testing.T) {
	mon, _, mr := newMonitor(t)
	ctx := context.Background()

	mon.Record(ctx, record("api_prompts", 200))
	mon.Record(ctx, record("api_prompts", 500))
	mon.Record(ctx, record("api_prompts", 429))
	mon.Record(ctx, record("api_prompts", 400))

	val, err := mr.Get("metrics:error:api_prompts")
	require.NoError(t, err)
	assert.Equal(t, "2", val, "only 5xx and 429 count as errors")
	assert.InDelta(t, 300, mr.TTL("metrics:error:api_prompts").Seconds(), 1)
}

func TestRecordRequestsTrafficSpikeAlert(t *testing.T) {
	mon, notifier, _ := newMonitor(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mon.Record(ctx, record("api_generate", 200))
	}

	alerts := notifier.alerts()
	require.NotEmpty(t, alerts)
	last := alerts[len(alerts)-1]
	assert.Equal(t, constants.AlertTypeTrafficSpike, last.Type)
	assert.Equal(t, "api_generate", last.Route)
	assert.Equal(t, int64(5), last.Count)
	assert.Equal(t, int64(5), last.Threshold)
}

func TestRecordRequestsErrorBurstAlert(t *testing.T) {
	mon, notifier, _ := newMonitor(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mon.Record(ctx, record("api_prompts", 502))
	}

	var burst *fakeAlert
	for _, a := range notifier.alerts() {
		if a.Type == constants.AlertTypeErrorBurst {
			burst = &a
			break
		}
	}
	require.NotNil(t, burst)
	assert.Equal(t, int64(3), burst.Count)
	assert.Equal(t, int64(3), burst.Threshold)
}

func TestRecordErrorCounterDecaysByTTL(t *testing.T) {
	mon, _, mr := newMonitor(t)
	ctx := context.Background()

	mon.Record(ctx, record("api_prompts", 500))
	mr.FastForward(301 * time.Second)
	mon.Record(ctx, record("api_prompts", 500))

	// The counter restarted after expiry rather than accumulating.
	val, err := mr.Get("metrics:error:api_prompts")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestRecordIsolatesStoreFailure(t *testing.T) {
	mon, notifier, mr := newMonitor(t)
	mr.Close()

	// Must not panic or propagate anything when the store is gone.
	assert.NotPanics(t, func() {
		mon.Record(context.Background(), record("api_prompts", 200))
	})
	assert.Empty(t, notifier.alerts())
}
