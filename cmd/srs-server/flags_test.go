package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgsRecognizesSurface(t *testing.T) {
	cases := []struct {
		args []string
		want func(options) bool
	}{
		{[]string{"-h"}, func(o options) bool { return o.showHelp }},
		{[]string{"-?"}, func(o options) bool { return o.showHelp }},
		{[]string{"-v"}, func(o options) bool { return o.showVersion }},
		{[]string{"-V"}, func(o options) bool { return o.showVersion }},
		{[]string{"-g"}, func(o options) bool { return o.showSignature }},
		{[]string{"-G"}, func(o options) bool { return o.showSignature }},
		{[]string{"-t", "-c", "x.conf"}, func(o options) bool { return o.testConfig && o.configPath == "x.conf" }},
	}
	for _, c := range cases {
		o, err := parseArgs(c.args)
		if err != nil {
			t.Fatalf("parseArgs(%v): %v", c.args, err)
		}
		if !c.want(o) {
			t.Fatalf("parseArgs(%v) = %+v", c.args, o)
		}
	}
}

func TestParseArgsRejectsUnknownAndDangling(t *testing.T) {
	if _, err := parseArgs([]string{"--bogus"}); err == nil {
		t.Fatal("expected error for unknown option")
	}
	if _, err := parseArgs([]string{"-c"}); err == nil {
		t.Fatal("expected error for -c without a path")
	}
}

func TestResolveConfigPrefersExplicitFile(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom.conf")
	if err := os.WriteFile(explicit, []byte("listen 1935;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveConfig(explicit)
	if err != nil || got != explicit {
		t.Fatalf("resolveConfig = %q, %v", got, err)
	}
}

func TestResolveConfigFallsBackFromDockerConf(t *testing.T) {
	dir := t.TempDir()
	sibling := filepath.Join(dir, "srs.conf")
	if err := os.WriteFile(sibling, []byte("listen 1935;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveConfig(filepath.Join(dir, "docker.conf"))
	if err != nil || got != sibling {
		t.Fatalf("resolveConfig = %q, %v, want sibling srs.conf", got, err)
	}
}
