// Package sensor owns the node's shared reading and the periodic updater
// that refreshes it from the HAL.
package sensor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"esphub/sensornode/internal/hal"
)

// Reading is the latest measurement exposed over the API and the uplink.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   int64   `json:"timestamp"`
}

// Store is the process-wide shared reading. Snapshots never block behind a
// slow update; writers hold the lock only to swap the value.
type Store struct {
	mu  sync.RWMutex
	cur Reading
}

// NewStore returns a Store seeded with the node's power-on values.
func NewStore() *Store {
	return &Store{
		cur: Reading{
			Temperature: 25.0,
			Humidity:    60.0,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// Snapshot returns a copy of the current reading.
func (s *Store) Snapshot() Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) put(r Reading) {
	s.mu.Lock()
	s.cur = r
	s.mu.Unlock()
}

// Updater refreshes the Store on a fixed period. HAL reads run inside a
// circuit breaker: a flaky sensor bus trips the breaker instead of hammering
// the hardware, and the store keeps serving the last good reading meanwhile.
type Updater struct {
	store  *Store
	period time.Duration
	cb     *gobreaker.CircuitBreaker

	// OnReading, when set, is invoked with every fresh reading after the
	// store is updated. Used to feed the telemetry uplink; it must not block.
	OnReading func(ctx context.Context, r Reading)

	read func() (hal.Sample, error)
	now  func() int64
}

// NewUpdater builds an Updater that reads through the HAL. The HAL must be
// patched before Run is called.
func NewUpdater(store *Store, period time.Duration, cb *gobreaker.CircuitBreaker) *Updater {
	return &Updater{
		store:  store,
		period: period,
		cb:     cb,
		read:   hal.ReadSensor,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// Run updates the store immediately, then on every period tick until ctx is
// canceled. It always returns nil; read failures are logged and absorbed.
func (u *Updater) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.period)
	defer ticker.Stop()

	for {
		u.updateOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (u *Updater) updateOnce(ctx context.Context) {
	v, err := u.cb.Execute(func() (any, error) {
		return u.read()
	})
	if err != nil {
		msg := err.Error()
		if errors.Is(err, gobreaker.ErrOpenState) {
			msg = "circuit open"
		}
		// Keep serving the last good reading.
		slog.WarnContext(ctx, "sensor read failed", "error", msg)
		return
	}

	sample := v.(hal.Sample)
	r := Reading{
		Temperature: sample.Temperature,
		Humidity:    sample.Humidity,
		Timestamp:   u.now(),
	}
	u.store.put(r)

	slog.InfoContext(ctx, "sensor reading updated",
		"temperature", r.Temperature,
		"humidity", r.Humidity,
		"timestamp", r.Timestamp,
	)

	if u.OnReading != nil {
		u.OnReading(ctx, r)
	}
}
