package relayforward

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

func newTestSource() *sourcehub.Source {
	key := sourcehub.NewStreamKey("v.com", "live", "stream1")
	return sourcehub.New(key, sourcehub.VhostConfig{GopCacheEnabled: true, GopCacheMaxFrames: 128})
}

// countingFactory fails the first failN builds, then returns fake,
// counting every attempt.
type countingFactory struct {
	mu       sync.Mutex
	attempts int
	failN    int
	fake     *fakePublisher
}

func (c *countingFactory) build(url string) (Publisher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.attempts <= c.failN {
		return nil, errors.New("dial failed")
	}
	return c.fake, nil
}

func (c *countingFactory) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func TestForwardTaskStopsCleanlyWithNoPublishedPackets(t *testing.T) {
	source := newTestSource()
	fake := &fakePublisher{}
	dest, err := NewDestination("rtmp://example.com/live/stream1", discardLogger(), func(string) (Publisher, error) { return fake, nil })
	if err != nil {
		t.Fatalf("NewDestination: %v", err)
	}
	task := NewForwardTask(source, dest, discardLogger())

	done := make(chan error, 1)
	go func() { done <- task.Run(context.Background()) }()

	// Give Run a moment to attach its consumer and connect.
	time.Sleep(20 * time.Millisecond)
	if !task.IsRunning() {
		t.Fatal("expected task to be running")
	}

	task.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error after Stop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if task.IsRunning() {
		t.Fatal("expected task to report not running after Stop")
	}
}

func TestForwardTaskRelaysPublishedPackets(t *testing.T) {
	source := newTestSource()
	fake := &fakePublisher{}
	dest, err := NewDestination("rtmp://example.com/live/stream1", discardLogger(), func(string) (Publisher, error) { return fake, nil })
	if err != nil {
		t.Fatalf("NewDestination: %v", err)
	}
	task := NewForwardTask(source, dest, discardLogger())

	done := make(chan error, 1)
	go func() { done <- task.Run(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	// Sequence header first so the AVC frame below is admitted.
	if err := source.Publish(&packet.Packet{Kind: packet.KindVideo, Payload: []byte{0x17, 0x00, 0, 0, 0}}); err != nil {
		t.Fatalf("Publish sequence header: %v", err)
	}
	p := packet.AcquirePacket()
	p.Kind = packet.KindVideo
	p.Payload = append(p.Payload, 0x17, 0x01, 0, 0, 0)
	if err := source.Publish(p); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	source.Flush()

	deadline := time.After(time.Second)
	for {
		fake.mu.Lock()
		n := len(fake.sent)
		fake.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("destination never received the published packet")
		case <-time.After(5 * time.Millisecond):
		}
	}

	task.Stop()
	<-done
}

func TestForwardTaskStopsDuringReconnectBackoff(t *testing.T) {
	source := newTestSource()
	cf := &countingFactory{failN: 2, fake: &fakePublisher{}}
	dest, err := NewDestination("rtmp://example.com/live/stream1", discardLogger(), cf.build)
	if err != nil {
		t.Fatalf("NewDestination: %v", err)
	}

	// The retry only comes after the fixed 5s reconnectDelay, so this
	// asserts that the first Connect is attempted and fails, and that Stop
	// ends Run during the backoff wait; the retry itself is not awaited.
	task := NewForwardTask(source, dest, discardLogger())
	done := make(chan error, 1)
	go func() { done <- task.Run(context.Background()) }()

	// First attempt fails immediately (synchronous, before the backoff
	// sleep), so Attempts() reaches 1 right away.
	deadline := time.After(time.Second)
	for cf.Attempts() < 1 {
		select {
		case <-deadline:
			t.Fatal("connect was never attempted")
		case <-time.After(5 * time.Millisecond):
		}
	}

	task.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
