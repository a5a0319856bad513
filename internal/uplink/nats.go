// Package uplink publishes sensor readings to a NATS JetStream collector.
// The uplink is optional: nodes on an isolated AP run with it disabled, and
// a failing collector must never stall the sensor updater.
package uplink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"

	"esphub/sensornode/internal/config"
	"esphub/sensornode/internal/sensor"
)

// readingsStream is the JetStream stream that retains node readings.
var readingsStream = streamSpec{
	name:     "SENSOR_READINGS",
	subjects: []string{"sensor.>"},
	maxAge:   24 * time.Hour,
}

type streamSpec struct {
	name     string
	subjects []string
	maxAge   time.Duration
}

// jsContext is the subset of nats.JetStreamContext the publisher uses.
// Defining an interface here allows test doubles to be injected without a
// live NATS server.
type jsContext interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher uplinks readings to subject "sensor.<node>.reading". The NATS
// connection is opened lazily on first publish and kept for reuse; publish
// calls run inside a circuit breaker so a down collector trips fast instead
// of backing up the updater.
type Publisher struct {
	url     string
	subject string
	cb      *gobreaker.CircuitBreaker

	newJS func(url string) (jsContext, func(), error)

	mu      sync.Mutex
	js      jsContext
	cleanup func()
}

// New constructs a Publisher. Enabled() is false when no URL is configured;
// all operations on a disabled publisher are no-ops.
func New(cfg config.UplinkConfig, cb *gobreaker.CircuitBreaker) *Publisher {
	return &Publisher{
		url:     cfg.URL,
		subject: fmt.Sprintf("sensor.%s.reading", cfg.NodeID),
		cb:      cb,
		newJS:   realNewJS,
	}
}

// Enabled reports whether an uplink URL is configured.
func (p *Publisher) Enabled() bool { return p.url != "" }

// Publish uplinks one reading. Failures are returned for logging but leave
// the publisher usable; the connection is dropped so the next publish
// redials.
func (p *Publisher) Publish(ctx context.Context, r sensor.Reading) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding reading: %w", err)
	}

	_, err = p.cb.Execute(func() (any, error) {
		js, err := p.conn()
		if err != nil {
			return nil, err
		}
		if _, err := js.Publish(p.subject, payload); err != nil {
			p.drop()
			return nil, fmt.Errorf("publishing to %s: %w", p.subject, err)
		}
		return nil, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("uplink circuit open: %w", err)
		}
		return err
	}

	slog.DebugContext(ctx, "reading uplinked", "subject", p.subject)
	return nil
}

// Close releases the NATS connection if one is open.
func (p *Publisher) Close() {
	p.drop()
}

// conn returns the cached JetStream context, dialing and ensuring the stream
// on first use.
func (p *Publisher) conn() (jsContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.js != nil {
		return p.js, nil
	}

	js, cleanup, err := p.newJS(p.url)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	if err := ensureStream(js, readingsStream); err != nil {
		cleanup()
		return nil, err
	}

	p.js = js
	p.cleanup = cleanup
	return js, nil
}

func (p *Publisher) drop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
	}
	p.js = nil
	p.cleanup = nil
}

// ensureStream creates the stream if it does not exist. An existing stream
// is left untouched — the collector owns its retention policy; the node only
// needs the stream present so publishes are not dropped.
func ensureStream(js jsContext, spec streamSpec) error {
	_, err := js.StreamInfo(spec.name)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		cfg := &nats.StreamConfig{
			Name:      spec.name,
			Subjects:  spec.subjects,
			Retention: nats.LimitsPolicy,
			MaxAge:    spec.maxAge,
		}
		if _, addErr := js.AddStream(cfg); addErr != nil {
			return fmt.Errorf("creating stream %s: %w", spec.name, addErr)
		}
	case err != nil:
		return fmt.Errorf("querying stream %s: %w", spec.name, err)
	}
	return nil
}

// realNewJS opens a real NATS connection and returns a JetStreamContext plus
// a cleanup function that closes the connection.
func realNewJS(url string) (jsContext, func(), error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, func() {}, fmt.Errorf("nats connect %s: %w", url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, func() {}, fmt.Errorf("nats jetstream context: %w", err)
	}

	return js, func() { nc.Close() }, nil
}
