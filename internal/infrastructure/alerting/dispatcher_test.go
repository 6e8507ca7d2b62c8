package alerting_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printstarter/printstarter/internal/infrastructure/alerting"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

type recordingSink struct {
	mu       sync.Mutex
	name     string
	err      error
	payloads []alerting.Payload
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(ctx context.Context, payload alerting.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func newDispatcher(t *testing.T, cooldown time.Duration, sinks ...alerting.Sink) (*alerting.Dispatcher, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return alerting.NewDispatcher(client, sinks, cooldown, logger.NewNoopLogger()), mr
}

func TestMaybeAlertDeduplicatesWithinCooldown(t *testing.T) {
	sink := &recordingSink{name: "fake"}
	d, mr := newDispatcher(t, 5*time.Minute, sink)
	ctx := context.Background()

	d.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, "api_prompts", 130, 120, nil)
	d.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, "api_prompts", 140, 120, nil)

	assert.Equal(t, 1, sink.count(), "second crossing within cooldown must be suppressed")

	// After cooldown expiry a third crossing dispatches again.
	mr.FastForward(5*time.Minute + time.Second)
	d.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, "api_prompts", 150, 120, nil)
	assert.Equal(t, 2, sink.count())
}

func TestMaybeAlertCooldownIsPerTypeAndRoute(t *testing.T) {
	sink := &recordingSink{name: "fake"}
	d, _ := newDispatcher(t, 5*time.Minute, sink)
	ctx := context.Background()

	d.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, "api_prompts", 130, 120, nil)
	d.MaybeAlert(ctx, constants.AlertTypeErrorBurst, "api_prompts", 25, 20, nil)
	d.MaybeAlert(ctx, constants.AlertTypeTrafficSpike, "api_generate", 130, 120, nil)

	assert.Equal(t, 3, sink.count())
}

func TestMaybeAlertSinkFailureDoesNotBlockOthers(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("smtp down")}
	healthy := &recordingSink{name: "healthy"}
	d, mr := newDispatcher(t, 5*time.Minute, broken, healthy)
	ctx := context.Background()

	d.MaybeAlert(ctx, constants.AlertTypeErrorBurst, "api_prompts", 25, 20, nil)

	assert.Equal(t, 1, broken.count())
	assert.Equal(t, 1, healthy.count())

	// Cooldown is set even though one sink failed.
	assert.True(t, mr.Exists("alerts:cooldown:error_burst:api_prompts"))
}

func TestMaybeAlertPayloadShape(t *testing.T) {
	sink := &recordingSink{name: "fake"}
	d, _ := newDispatcher(t, time.Minute, sink)

	d.MaybeAlert(context.Background(), constants.AlertTypeErrorBurst, "api_prompts", 25, 20,
		map[string]interface{}{"window_seconds": int64(300)})

	require.Equal(t, 1, sink.count())
	p := sink.payloads[0]
	assert.Equal(t, constants.AlertTypeErrorBurst, p.Type)
	assert.Equal(t, "api_prompts", p.Route)
	assert.Equal(t, int64(25), p.Count)
	assert.Equal(t, int64(20), p.Threshold)
	assert.Equal(t, int64(300), p.Context["window_seconds"])

	_, err := time.Parse(time.RFC3339, p.Timestamp)
	assert.NoError(t, err)
}

func TestSendTestAlertBypassesCooldown(t *testing.T) {
	sink := &recordingSink{name: "fake"}
	d, mr := newDispatcher(t, 5*time.Minute, sink)
	ctx := context.Background()

	// Active cooldown must not suppress the manual test path.
	require.NoError(t, mr.Set("alerts:cooldown:manual_test:api_test_alert", "1"))

	d.SendTestAlert(ctx, "api_test_alert")
	d.SendTestAlert(ctx, "api_test_alert")

	assert.Equal(t, 2, sink.count())
	p := sink.payloads[0]
	assert.Equal(t, constants.AlertTypeManualTest, p.Type)
	assert.Equal(t, int64(1), p.Count)
	assert.Equal(t, int64(1), p.Threshold)
	assert.Equal(t, "manual_api_test", p.Context["source"])
}

func TestWebhookSinkDeliversJSON(t *testing.T) {
	var (
		mu       sync.Mutex
		received alerting.Payload
		ctype    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		ctype = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := alerting.NewWebhookSink(srv.URL)
	payload := alerting.Payload{
		Type:      constants.AlertTypeTrafficSpike,
		Route:     "api_prompts",
		Count:     130,
		Threshold: 120,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, sink.Send(context.Background(), payload))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, payload.Route, received.Route)
	assert.Equal(t, payload.Count, received.Count)
}

func TestWebhookSinkRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := alerting.NewWebhookSink(srv.URL)
	err := sink.Send(context.Background(), alerting.Payload{Type: constants.AlertTypeManualTest})
	assert.Error(t, err)
}
