package hooks

import (
	"context"
	"errors"
	"testing"
)

type recordingHook struct {
	id   string
	err  error
	got  []Event
}

func (h *recordingHook) Execute(_ context.Context, e Event) error {
	h.got = append(h.got, e)
	return h.err
}

func (h *recordingHook) ID() string { return h.id }

func TestNotifyDispatchesToRegisteredHooksOnly(t *testing.T) {
	m := NewManager(nil)
	onPublish := &recordingHook{id: "a"}
	onPlay := &recordingHook{id: "b"}
	m.Register(EventOnPublish, onPublish)
	m.Register(EventOnPlay, onPlay)

	evt := NewEvent(EventOnPublish, "v.com", "live", "s1")
	if err := m.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(onPublish.got) != 1 {
		t.Fatalf("onPublish hook got %d events, want 1", len(onPublish.got))
	}
	if len(onPlay.got) != 0 {
		t.Fatalf("onPlay hook should not have been invoked, got %d", len(onPlay.got))
	}
}

func TestNotifyStopsAtFirstError(t *testing.T) {
	m := NewManager(nil)
	boom := errors.New("rejected")
	first := &recordingHook{id: "first", err: boom}
	second := &recordingHook{id: "second"}
	m.Register(EventOnPublish, first)
	m.Register(EventOnPublish, second)

	err := m.Notify(context.Background(), NewEvent(EventOnPublish, "v.com", "live", "s1"))
	if !errors.Is(err, boom) {
		t.Fatalf("Notify err = %v, want %v", err, boom)
	}
	if len(second.got) != 0 {
		t.Fatal("second hook should not run after first hook's error")
	}
}

func TestNotifyBestEffortRunsAllHooks(t *testing.T) {
	m := NewManager(nil)
	boom := errors.New("failed")
	first := &recordingHook{id: "first", err: boom}
	second := &recordingHook{id: "second"}
	m.Register(EventOnUnpublish, first)
	m.Register(EventOnUnpublish, second)

	_ = m.NotifyBestEffort(context.Background(), NewEvent(EventOnUnpublish, "v.com", "live", "s1"))
	if len(second.got) != 1 {
		t.Fatal("second hook should still run even after first hook's error")
	}
}

func TestUnregisterRemovesHook(t *testing.T) {
	m := NewManager(nil)
	h := &recordingHook{id: "x"}
	m.Register(EventOnStop, h)

	if !m.Unregister(EventOnStop, "x") {
		t.Fatal("expected Unregister to report found")
	}
	if err := m.Notify(context.Background(), NewEvent(EventOnStop, "v.com", "live", "s1")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(h.got) != 0 {
		t.Fatal("unregistered hook should not be invoked")
	}
}
