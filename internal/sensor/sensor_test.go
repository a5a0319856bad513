package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esphub/sensornode/internal/hal"
)

func testBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "sensor-test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func TestStore_PowerOnValues(t *testing.T) {
	t.Parallel()

	r := NewStore().Snapshot()
	assert.Equal(t, 25.0, r.Temperature)
	assert.Equal(t, 60.0, r.Humidity)
	assert.NotZero(t, r.Timestamp)
}

func TestUpdater_RefreshesStore(t *testing.T) {
	t.Parallel()

	store := NewStore()
	u := NewUpdater(store, time.Hour, testBreaker())
	u.read = func() (hal.Sample, error) {
		return hal.Sample{Temperature: 22.5, Humidity: 55.5}, nil
	}
	u.now = func() int64 { return 1700000000 }

	u.updateOnce(context.Background())

	r := store.Snapshot()
	assert.Equal(t, 22.5, r.Temperature)
	assert.Equal(t, 55.5, r.Humidity)
	assert.Equal(t, int64(1700000000), r.Timestamp)
}

func TestUpdater_ReadFailureKeepsLastReading(t *testing.T) {
	t.Parallel()

	store := NewStore()
	before := store.Snapshot()

	u := NewUpdater(store, time.Hour, testBreaker())
	u.read = func() (hal.Sample, error) {
		return hal.Sample{}, errors.New("bus timeout")
	}

	u.updateOnce(context.Background())

	assert.Equal(t, before, store.Snapshot())
}

func TestUpdater_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	store := NewStore()
	cb := testBreaker()
	calls := 0

	u := NewUpdater(store, time.Hour, cb)
	u.read = func() (hal.Sample, error) {
		calls++
		return hal.Sample{}, errors.New("bus timeout")
	}

	for range 5 {
		u.updateOnce(context.Background())
	}

	// After 3 consecutive failures the breaker opens and stops invoking the
	// HAL read at all.
	assert.Equal(t, 3, calls)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestUpdater_OnReadingHook(t *testing.T) {
	t.Parallel()

	store := NewStore()
	u := NewUpdater(store, time.Hour, testBreaker())
	u.read = func() (hal.Sample, error) {
		return hal.Sample{Temperature: 21, Humidity: 51}, nil
	}

	var got []Reading
	u.OnReading = func(_ context.Context, r Reading) { got = append(got, r) }

	u.updateOnce(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, 21.0, got[0].Temperature)
}

func TestUpdater_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := NewStore()
	u := NewUpdater(store, 10*time.Millisecond, testBreaker())
	u.read = func() (hal.Sample, error) {
		return hal.Sample{Temperature: 20, Humidity: 50}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	// Let at least the immediate update land, then cancel.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("updater did not stop after cancel")
	}

	assert.Equal(t, 20.0, store.Snapshot().Temperature)
}
