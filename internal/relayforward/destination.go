// If you are AI: Destination is one outgoing forward target: a status
// machine (disconnected/connecting/connected/error), per-destination
// metrics, and a Publisher it sends packets through.
package relayforward

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/srsgo/srs/internal/media/packet"
)

// Publisher is the minimal outgoing-RTMP-client surface a Destination
// needs. A concrete implementation wraps internal/core/protocol/rtmp's
// client handshake + publish command sequence; tests use a fake.
type Publisher interface {
	Connect(ctx context.Context) error
	SendPacket(p *packet.Packet) error
	Close() error
}

// PublisherFactory creates a Publisher bound to a single destination URL.
type PublisherFactory func(url string) (Publisher, error)

// Status is a destination's connection lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Metrics tracks per-destination relay performance.
type Metrics struct {
	PacketsSent     uint64
	PacketsDropped  uint64
	BytesSent       uint64
	ReconnectCount  uint32
	LastSentTime    time.Time
	ConnectTime     time.Time
}

// Destination is one outgoing forward target (one "forward url;" entry).
type Destination struct {
	URL     string
	factory PublisherFactory
	logger  *slog.Logger

	mu        sync.RWMutex
	publisher Publisher
	status    Status
	lastErr   error
	metrics   Metrics
}

// NewDestination validates the URL and builds an idle destination.
func NewDestination(rawURL string, logger *slog.Logger, factory PublisherFactory) (*Destination, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid forward destination url: %w", err)
	}
	if u.Scheme != "rtmp" {
		return nil, fmt.Errorf("forward destination must use rtmp:// scheme, got %q", u.Scheme)
	}
	return &Destination{
		URL:     rawURL,
		factory: factory,
		logger:  logger.With("forward_url", rawURL),
	}, nil
}

// Connect establishes the outgoing publish connection, idempotent if
// already connected.
func (d *Destination) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == StatusConnected {
		return nil
	}
	d.status = StatusConnecting

	pub, err := d.factory(d.URL)
	if err != nil {
		d.status = StatusError
		d.lastErr = err
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := pub.Connect(ctx); err != nil {
		d.status = StatusError
		d.lastErr = err
		return fmt.Errorf("connect publisher: %w", err)
	}

	d.publisher = pub
	d.status = StatusConnected
	d.metrics.ConnectTime = time.Now()
	d.metrics.ReconnectCount++
	d.lastErr = nil
	d.logger.Info("forward destination connected")
	return nil
}

// Send forwards one packet, dropping it and marking the destination
// errored if the publisher rejects it.
func (d *Destination) Send(p *packet.Packet) error {
	d.mu.RLock()
	pub := d.publisher
	status := d.status
	d.mu.RUnlock()

	if status != StatusConnected || pub == nil {
		d.mu.Lock()
		d.metrics.PacketsDropped++
		d.mu.Unlock()
		return fmt.Errorf("forward destination %s not connected", d.URL)
	}

	if err := pub.SendPacket(p); err != nil {
		d.mu.Lock()
		d.status = StatusError
		d.lastErr = err
		d.metrics.PacketsDropped++
		d.mu.Unlock()
		return fmt.Errorf("send packet: %w", err)
	}

	d.mu.Lock()
	d.metrics.PacketsSent++
	d.metrics.BytesSent += uint64(len(p.Payload))
	d.metrics.LastSentTime = time.Now()
	d.mu.Unlock()
	return nil
}

// Close tears down the outgoing connection if any.
func (d *Destination) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.publisher == nil {
		return nil
	}
	err := d.publisher.Close()
	d.publisher = nil
	d.status = StatusDisconnected
	return err
}

// GetStatus returns the connection state.
func (d *Destination) GetStatus() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// GetMetrics returns a copy of the relay counters.
func (d *Destination) GetMetrics() Metrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metrics
}

// GetLastError returns the most recent connect/send failure.
func (d *Destination) GetLastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}
