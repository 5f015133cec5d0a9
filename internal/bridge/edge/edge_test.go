package edge

import (
	"testing"
	"time"

	"github.com/srsgo/srs/internal/sourcehub"
)

func TestPullStreamWithoutOriginDoesNothing(t *testing.T) {
	registry := sourcehub.NewRegistry()
	p := NewPuller(registry, func(string) []string { return nil }, nil)

	key := sourcehub.NewStreamKey("edge.com", "live", "s")
	registry.FetchOrCreate(key, sourcehub.VhostConfig{IsEdge: true})
	p.PullStream(key)

	if p.ActivePulls() != 0 {
		t.Fatalf("pulls = %d, want 0 when no origin is configured", p.ActivePulls())
	}
}

func TestPullStreamStartsOneSessionPerKey(t *testing.T) {
	registry := sourcehub.NewRegistry()
	p := NewPuller(registry, func(string) []string { return []string{"127.0.0.1:1"} }, nil)
	defer p.Shutdown()

	key := sourcehub.NewStreamKey("edge.com", "live", "s")
	registry.FetchOrCreate(key, sourcehub.VhostConfig{IsEdge: true})

	p.PullStream(key)
	p.PullStream(key) // a second consumer must not spawn a second session

	if p.ActivePulls() != 1 {
		t.Fatalf("pulls = %d, want exactly 1", p.ActivePulls())
	}
}

func TestStopPullAppliesGraceWindowNotImmediateTeardown(t *testing.T) {
	registry := sourcehub.NewRegistry()
	p := NewPuller(registry, func(string) []string { return []string{"127.0.0.1:1"} }, nil)
	defer p.Shutdown()

	key := sourcehub.NewStreamKey("edge.com", "live", "s")
	registry.FetchOrCreate(key, sourcehub.VhostConfig{IsEdge: true})
	p.PullStream(key)

	p.StopPull(key)
	time.Sleep(50 * time.Millisecond)
	if p.ActivePulls() != 1 {
		t.Fatal("teardown must wait out the grace window")
	}

	// A viewer coming back inside the window keeps the pull alive.
	p.PullStream(key)
	time.Sleep(50 * time.Millisecond)
	if p.ActivePulls() != 1 {
		t.Fatal("re-attach inside the grace window must cancel teardown")
	}
}

func TestStopPullWithoutSessionIsNoop(t *testing.T) {
	registry := sourcehub.NewRegistry()
	p := NewPuller(registry, func(string) []string { return nil }, nil)
	p.StopPull(sourcehub.NewStreamKey("edge.com", "live", "nope"))
}
