// If you are AI: each case builds two trees, reloads from one to the
// other, and asserts exactly the expected notifications fire (no more,
// no less) for the changed block, and none for everything untouched.
package reload

import (
	"testing"

	"github.com/srsgo/srs/internal/directive"
)

func mustParse(t *testing.T, text string) *directive.Directive {
	t.Helper()
	root, err := directive.Parse([]byte(text), "test.conf", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func kinds(notes []Notification) []Kind {
	out := make([]Kind, len(notes))
	for i, n := range notes {
		out[i] = n.Kind
	}
	return out
}

func containsKind(notes []Notification, k Kind) bool {
	for _, n := range notes {
		if n.Kind == k {
			return true
		}
	}
	return false
}

func TestDiffNothingChangedProducesNoNotifications(t *testing.T) {
	text := `
listen 1935;
vhost __defaultVhost__ {
    chunk_size 60000;
}
`
	old := mustParse(t, text)
	new_ := mustParse(t, text)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("expected no notifications, got %v", kinds(notes))
	}
}

func TestDiffListenChangeFiresOnlyListen(t *testing.T) {
	old := mustParse(t, `listen 1935;`)
	new_ := mustParse(t, `listen 1936;`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(notes) != 1 || notes[0].Kind != KindListen {
		t.Fatalf("expected exactly [listen], got %v", kinds(notes))
	}
}

func TestDiffVhostChunkSizeFiresChunkSizeOnly(t *testing.T) {
	old := mustParse(t, `
vhost __defaultVhost__ {
    chunk_size 60000;
    min_latency off;
}
`)
	new_ := mustParse(t, `
vhost __defaultVhost__ {
    chunk_size 128;
    min_latency off;
}
`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(notes) != 1 || notes[0].Kind != KindVhostChunkSize || notes[0].Vhost != "__defaultVhost__" {
		t.Fatalf("expected exactly [vhost_chunk_size], got %v", kinds(notes))
	}
}

func TestDiffVhostAddedAndRemoved(t *testing.T) {
	old := mustParse(t, `
vhost a.com {
}
`)
	new_ := mustParse(t, `
vhost b.com {
}
`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !containsKind(notes, KindVhostAdded) || !containsKind(notes, KindVhostRemoved) {
		t.Fatalf("expected vhost_added and vhost_removed, got %v", kinds(notes))
	}
}

func TestDiffEdgeModeChangeIsRejected(t *testing.T) {
	old := mustParse(t, `
vhost edge.com {
    cluster {
        mode remote;
    }
}
`)
	new_ := mustParse(t, `
vhost edge.com {
    cluster {
        mode local;
    }
}
`)

	_, err := Diff(old, new_)
	if err == nil {
		t.Fatal("expected EdgeModeChanged error, got nil")
	}
}

func TestDiffDvrIgnoresDvrApplyChild(t *testing.T) {
	old := mustParse(t, `
vhost v.com {
    dvr {
        enabled on;
        dvr_apply all;
    }
}
`)
	new_ := mustParse(t, `
vhost v.com {
    dvr {
        enabled on;
        dvr_apply live;
    }
}
`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if containsKind(notes, KindVhostDVR) {
		t.Fatalf("dvr_apply-only change should not fire vhost_dvr, got %v", kinds(notes))
	}
}

func TestDiffDvrFiresOnRealChange(t *testing.T) {
	old := mustParse(t, `
vhost v.com {
    dvr {
        enabled on;
        dvr_path ./a;
    }
}
`)
	new_ := mustParse(t, `
vhost v.com {
    dvr {
        enabled on;
        dvr_path ./b;
    }
}
`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !containsKind(notes, KindVhostDVR) {
		t.Fatalf("expected vhost_dvr, got %v", kinds(notes))
	}
}

func TestDiffIngestAddedRemovedUpdated(t *testing.T) {
	old := mustParse(t, `
vhost v.com {
    ingest keep {
        enabled on;
        input { type file; url a.flv; }
    }
    ingest gone {
        enabled on;
    }
    ingest changed {
        enabled on;
        input { type file; url old.flv; }
    }
}
`)
	new_ := mustParse(t, `
vhost v.com {
    ingest keep {
        enabled on;
        input { type file; url a.flv; }
    }
    ingest changed {
        enabled on;
        input { type file; url new.flv; }
    }
    ingest fresh {
        enabled on;
    }
}
`)

	notes, err := Diff(old, new_)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var removed, added, updated int
	for _, n := range notes {
		if n.Kind != KindVhostIngest {
			continue
		}
		switch {
		case len(n.Arg) >= 7 && n.Arg[:7] == "removed":
			removed++
		case len(n.Arg) >= 5 && n.Arg[:5] == "added":
			added++
		case len(n.Arg) >= 7 && n.Arg[:7] == "updated":
			updated++
		}
	}
	if removed != 1 || added != 1 || updated != 1 {
		t.Fatalf("expected 1 removed, 1 added, 1 updated ingest notification, got %v", kinds(notes))
	}
}

type recordingSubscriber struct {
	got []Notification
}

func (r *recordingSubscriber) OnReload(n Notification) error {
	r.got = append(r.got, n)
	return nil
}

func TestEngineReloadCommitsAndNotifiesOnSuccess(t *testing.T) {
	old := mustParse(t, `listen 1935;`)
	e := New(old)
	sub := &recordingSubscriber{}
	e.Subscribe(sub)

	new_ := mustParse(t, `listen 1936;`)
	if err := e.Reload(new_); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if e.Current() != new_ {
		t.Fatal("expected engine to commit new tree")
	}
	if len(sub.got) != 1 || sub.got[0].Kind != KindListen {
		t.Fatalf("expected subscriber notified of listen change, got %v", kinds(sub.got))
	}
}

func TestDiffDaemonChangeIsRejected(t *testing.T) {
	old := mustParse(t, `daemon on;`)
	new_ := mustParse(t, `daemon off;`)

	if _, err := Diff(old, new_); err == nil {
		t.Fatal("expected error for daemon change, got nil")
	}
}

func TestDiffStreamCasterChangeIsRejected(t *testing.T) {
	old := mustParse(t, `
stream_caster {
    enabled on;
    caster flv;
    listen 8936;
}
`)
	new_ := mustParse(t, `
stream_caster {
    enabled on;
    caster flv;
    listen 8937;
}
`)

	if _, err := Diff(old, new_); err == nil {
		t.Fatal("expected error for stream_caster change, got nil")
	}
}

type failingSubscriber struct {
	failOn Kind
	got    []Notification
}

func (f *failingSubscriber) OnReload(n Notification) error {
	f.got = append(f.got, n)
	if n.Kind == f.failOn {
		return &subscriberErr{}
	}
	return nil
}

type subscriberErr struct{}

func (*subscriberErr) Error() string { return "subscriber rejected" }

func TestEngineReloadRollsBackOnSubscriberError(t *testing.T) {
	old := mustParse(t, `listen 1935; max_connections 100;`)
	e := New(old)
	sub := &failingSubscriber{failOn: KindListen}
	e.Subscribe(sub)

	new_ := mustParse(t, `listen 1936; max_connections 200;`)
	if err := e.Reload(new_); err == nil {
		t.Fatal("expected subscriber error to surface")
	}
	if e.Current() != old {
		t.Fatal("expected engine to roll back to old tree after subscriber error")
	}
	if len(sub.got) != 1 {
		t.Fatalf("expected dispatch to stop at the failing notification, got %v", kinds(sub.got))
	}
}

func TestEngineReloadPreservesOldTreeOnEdgeModeChange(t *testing.T) {
	old := mustParse(t, `
vhost edge.com {
    cluster { mode remote; }
}
`)
	e := New(old)
	sub := &recordingSubscriber{}
	e.Subscribe(sub)

	new_ := mustParse(t, `
vhost edge.com {
    cluster { mode local; }
}
`)
	if err := e.Reload(new_); err == nil {
		t.Fatal("expected error from edge mode change")
	}
	if e.Current() != old {
		t.Fatal("expected engine to keep old tree after rejected reload")
	}
	if len(sub.got) != 0 {
		t.Fatalf("expected no notifications on rejected reload, got %v", kinds(sub.got))
	}
}
