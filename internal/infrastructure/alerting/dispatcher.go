package alerting

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/logger"
)

// Dispatcher fans alerts out to all configured sinks with per-sink
// failure isolation and a store-backed cooldown per (type, route).
type Dispatcher struct {
	client   goredis.UniversalClient
	sinks    []Sink
	cooldown time.Duration
	log      logger.Logger
}

// NewDispatcher creates a dispatcher. Pass only the sinks that are
// actually configured; an unconfigured transport simply isn't wired.
func NewDispatcher(client goredis.UniversalClient, sinks []Sink, cooldown time.Duration, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		client:   client,
		sinks:    sinks,
		cooldown: cooldown,
		log:      log.WithComponent("alerting"),
	}
}

// MaybeAlert dispatches an alert unless one of the same type/route fired
// within the cooldown window. The cooldown key is set unconditionally
// after the dispatch attempt, even if some sinks failed, to avoid alert
// storms from a flapping sink.
func (d *Dispatcher) MaybeAlert(
	ctx context.Context,
	typ constants.AlertType,
	route string,
	count int64,
	threshold int64,
	alertContext map[string]interface{},
) {
	key := fmt.Sprintf(constants.KeyAlertCooldownFormat, typ, route)

	_, err := d.client.Get(ctx, key).Result()
	if err == nil {
		// Cooldown active, already alerted recently.
		return
	}
	if err != goredis.Nil {
		d.log.Error(ctx, "alert cooldown check failed", err, logger.String("key", key))
		return
	}

	payload := newPayload(typ, route, count, threshold, alertContext)
	d.dispatch(ctx, payload)

	if err := d.client.Set(ctx, key, "1", d.cooldown).Err(); err != nil {
		d.log.Error(ctx, "alert cooldown set failed", err, logger.String("key", key))
	}
}

// SendTestAlert dispatches a synthetic alert for operational verification,
// bypassing cooldown and thresholding entirely.
func (d *Dispatcher) SendTestAlert(ctx context.Context, route string) {
	payload := newPayload(constants.AlertTypeManualTest, route, 1, 1,
		map[string]interface{}{"source": "manual_api_test"})
	d.dispatch(ctx, payload)
}

// dispatch delivers the payload to every sink concurrently. Each sink's
// failure is independent; a slow or broken sink never blocks the others.
func (d *Dispatcher) dispatch(ctx context.Context, payload Payload) {
	var g errgroup.Group
	for _, sink := range d.sinks {
		g.Go(func() error {
			if err := sink.Send(ctx, payload); err != nil {
				d.log.Error(ctx, "alert sink delivery failed", err,
					logger.String("sink", sink.Name()),
					logger.String("alert_type", string(payload.Type)),
					logger.String("route", payload.Route),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	d.log.Info(ctx, "alert dispatched",
		logger.String("alert_type", string(payload.Type)),
		logger.String("route", payload.Route),
		logger.Int64("count", payload.Count),
		logger.Int64("threshold", payload.Threshold),
		logger.Int("sinks", len(d.sinks)),
	)
}
