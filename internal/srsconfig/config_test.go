package srsconfig

import (
	"testing"
	"time"

	"github.com/srsgo/srs/internal/directive"
)

func parse(t *testing.T, text string) *Config {
	t.Helper()
	root, err := directive.Parse([]byte(text), "test.conf", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	directive.Transform(root, nil)
	return New(root)
}

func TestGlobalDefaults(t *testing.T) {
	c := parse(t, ``)
	if c.Listen() != DefaultListen {
		t.Errorf("Listen() = %q, want default %q", c.Listen(), DefaultListen)
	}
	if c.GlobalChunkSize() != DefaultChunkSize {
		t.Errorf("GlobalChunkSize() = %d, want %d", c.GlobalChunkSize(), DefaultChunkSize)
	}
	if c.HTTPAPIEnabled() {
		t.Error("HTTPAPIEnabled() should default to false when http_api is absent")
	}
}

func TestGlobalOverrides(t *testing.T) {
	c := parse(t, `
listen 1936;
chunk_size 4096;
max_connections 2000;
http_api {
    enabled on;
}
`)
	if c.Listen() != "1936" {
		t.Errorf("Listen() = %q", c.Listen())
	}
	if c.GlobalChunkSize() != 4096 {
		t.Errorf("GlobalChunkSize() = %d", c.GlobalChunkSize())
	}
	if c.MaxConnections() != 2000 {
		t.Errorf("MaxConnections() = %d", c.MaxConnections())
	}
	if !c.HTTPAPIEnabled() {
		t.Error("HTTPAPIEnabled() should be true")
	}
}

func TestVhostChunkSizeFallsBackToGlobal(t *testing.T) {
	c := parse(t, `
chunk_size 8192;
vhost __defaultVhost__ {
}
`)
	if got := c.ChunkSize("__defaultVhost__"); got != 8192 {
		t.Errorf("ChunkSize() = %d, want global fallback 8192", got)
	}
}

func TestVhostChunkSizeOverridesGlobal(t *testing.T) {
	c := parse(t, `
chunk_size 8192;
vhost __defaultVhost__ {
    chunk_size 128;
}
`)
	if got := c.ChunkSize("__defaultVhost__"); got != 128 {
		t.Errorf("ChunkSize() = %d, want 128", got)
	}
}

func TestVhostEnabledDefaultsTrue(t *testing.T) {
	c := parse(t, `
vhost v.com {
}
`)
	if !c.VhostEnabled("v.com") {
		t.Error("vhost with no enabled directive should default to enabled")
	}
	if c.VhostEnabled("missing.com") {
		t.Error("a vhost that was never declared should not be enabled")
	}
}

func TestVhostIsEdgeRequiresClusterModeRemote(t *testing.T) {
	c := parse(t, `
vhost origin.com {
}
vhost edge.com {
    cluster {
        mode remote;
    }
}
`)
	if c.VhostIsEdge("origin.com") {
		t.Error("origin.com should not be edge")
	}
	if !c.VhostIsEdge("edge.com") {
		t.Error("edge.com should be edge")
	}
}

func TestGopCacheDefaultsTrue(t *testing.T) {
	c := parse(t, `
vhost v.com {
    play {
        gop_cache off;
    }
}
vhost w.com {
}
`)
	if c.GopCache("v.com") {
		t.Error("GopCache(v.com) should be false")
	}
	if !c.GopCache("w.com") {
		t.Error("GopCache(w.com) should default to true")
	}
}

func TestQueueLengthParsedAsSeconds(t *testing.T) {
	c := parse(t, `
vhost v.com {
    play {
        queue_length 60;
    }
}
`)
	if got := c.QueueLength("v.com"); got != 60*time.Second {
		t.Errorf("QueueLength() = %v, want 60s", got)
	}
	if got := c.QueueLength("unknown.com"); got != DefaultQueueSeconds*time.Second {
		t.Errorf("QueueLength(unknown) = %v, want default", got)
	}
}

func TestCompatTransformRewritesHTTPStreamAndVhostHTTP(t *testing.T) {
	c := parse(t, `
http_stream {
    enabled on;
}
vhost v.com {
    http {
        enabled on;
    }
}
`)
	if c.HTTPServer() == nil {
		t.Fatal("http_stream should have been renamed to http_server by Transform")
	}
	if c.HTTPStatic("v.com") == nil {
		t.Fatal("vhost.http should have been renamed to http_static by Transform")
	}
}
