// Package alerting dispatches deduplicated operational alerts to a set of
// notification sinks. Deduplication is a cooldown key in Redis: while the
// key lives, repeated alerts of the same type/route are suppressed.
package alerting

import (
	"context"
	"time"

	"github.com/printstarter/printstarter/pkg/constants"
)

// Payload is the alert body delivered to every sink.
type Payload struct {
	Type      constants.AlertType    `json:"type"`
	Route     string                 `json:"route"`
	Count     int64                  `json:"count"`
	Threshold int64                  `json:"threshold"`
	Timestamp string                 `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

func newPayload(typ constants.AlertType, route string, count, threshold int64, context map[string]interface{}) Payload {
	return Payload{
		Type:      typ,
		Route:     route,
		Count:     count,
		Threshold: threshold,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Context:   context,
	}
}

// Sink delivers one alert to one destination. Delivery is fire-and-forget
// from the dispatcher's point of view; a sink failure is logged and never
// blocks the other sinks.
type Sink interface {
	Name() string
	Send(ctx context.Context, payload Payload) error
}
