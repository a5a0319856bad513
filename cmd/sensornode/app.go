package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"esphub/sensornode/internal/boot"
	"esphub/sensornode/internal/config"
	"esphub/sensornode/internal/hal"
	"esphub/sensornode/internal/sensor"
	"esphub/sensornode/internal/telemetry"
	"esphub/sensornode/internal/uplink"
)

// AppContext holds all constructed application dependencies shared across
// subcommands. It is built once in PersistentPreRunE and referenced by
// serve.go and bootstrap.go. Construction performs no I/O, no logging, and
// no HAL calls — all of that waits for the bootstrap sequence.
type AppContext struct {
	cfg       *config.Config
	seq       *boot.Sequencer
	store     *sensor.Store
	updater   *sensor.Updater
	publisher *uplink.Publisher
}

// buildAppContext constructs all application dependencies from cfg:
//  1. The bootstrap sequencer over the two one-shot steps
//  2. One circuit breaker per flaky dependency (sensor bus, uplink)
//  3. The reading store, the periodic updater, and the uplink publisher
func buildAppContext(cfg *config.Config) (*AppContext, error) {
	seq := boot.New(hal.LinkPatches, telemetry.InitDefault)

	store := sensor.NewStore()
	updater := sensor.NewUpdater(store, cfg.Sensor.Period, newBreaker("sensor-hal"))
	publisher := uplink.New(cfg.Uplink, newBreaker("uplink"))

	if publisher.Enabled() {
		updater.OnReading = func(ctx context.Context, r sensor.Reading) {
			if err := publisher.Publish(ctx, r); err != nil {
				slog.WarnContext(ctx, "uplink publish failed", "error", err)
			}
		}
	}

	return &AppContext{
		cfg:       cfg,
		seq:       seq,
		store:     store,
		updater:   updater,
		publisher: publisher,
	}, nil
}

// newBreaker returns a gobreaker configured to trip after 3 consecutive
// failures and reset after 30 seconds in the open state.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}
