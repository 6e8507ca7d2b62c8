package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printstarter/printstarter/internal/infrastructure/alerting"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

type captureSink struct {
	mu       sync.Mutex
	payloads []alerting.Payload
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Send(_ context.Context, p alerting.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func newAlertStack(t *testing.T, token string) (*gin.Engine, *captureSink) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sink := &captureSink{}
	dispatcher := alerting.NewDispatcher(client, []alerting.Sink{sink}, 5*time.Minute, logger.NewNoopLogger())
	h := NewAlertHandler(dispatcher, token, logger.NewNoopLogger())

	r := gin.New()
	r.POST("/api/test-alert", h.TestAlert)
	return r, sink
}

func TestTestAlertRequiresConfiguredToken(t *testing.T) {
	r, sink := newAlertStack(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/test-alert", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 0, sink.count())
}

func TestTestAlertRejectsBadToken(t *testing.T) {
	r, sink := newAlertStack(t, "s3cret")

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{"missing token", "", ""},
		{"wrong header token", "nope", ""},
		{"wrong body token", "", `{"token":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/test-alert", strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.header != "" {
				req.Header.Set(constants.HeaderAlertTestToken, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized."}`, w.Body.String())
		})
	}
	assert.Equal(t, 0, sink.count())
}

func TestTestAlertDispatchesWithHeaderToken(t *testing.T) {
	r, sink := newAlertStack(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/test-alert", nil)
	req.Header.Set(constants.HeaderAlertTestToken, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Test alert dispatched."}`, w.Body.String())
	require.Equal(t, 1, sink.count())

	p := sink.payloads[0]
	assert.Equal(t, constants.AlertTypeManualTest, p.Type)
	assert.Equal(t, constants.RouteAPITestAlert, p.Route)
}

func TestTestAlertDispatchesWithBodyToken(t *testing.T) {
	r, sink := newAlertStack(t, "s3cret")

	w := postJSON(r, "/api/test-alert", `{"token":"s3cret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sink.count())
}
