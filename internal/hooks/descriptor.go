// If you are AI: the hook subsystem's own descriptor file is YAML, not a
// directive block — hooks are host-operator tooling config (which
// webhook URLs to call, timeouts), not live-reloadable server config, so
// it stays out of the directive tree.
package hooks

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Descriptor is the on-disk shape of a hooks config file.
type Descriptor struct {
	Timeout string          `yaml:"timeout,omitempty"`
	Hooks   []WebhookConfig `yaml:"hooks"`
}

// WebhookConfig declares one webhook registration.
type WebhookConfig struct {
	ID      string            `yaml:"id"`
	Events  []EventType       `yaml:"events"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoadDescriptor reads and strictly decodes a hooks descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hooks descriptor: %w", err)
	}

	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode hooks descriptor: %w", err)
	}
	return &d, nil
}

// ApplyTo registers every webhook declared in d onto m.
func (d *Descriptor) ApplyTo(m *Manager) error {
	timeout := 30 * time.Second
	if d.Timeout != "" {
		t, err := time.ParseDuration(d.Timeout)
		if err != nil {
			return fmt.Errorf("invalid hooks timeout %q: %w", d.Timeout, err)
		}
		timeout = t
	}

	for _, wc := range d.Hooks {
		if wc.ID == "" || wc.URL == "" {
			return fmt.Errorf("hook descriptor entry missing id or url")
		}
		h := NewWebhookHook(wc.ID, wc.URL, timeout)
		for k, v := range wc.Headers {
			h.AddHeader(k, v)
		}
		for _, evt := range wc.Events {
			m.Register(evt, h)
		}
	}
	return nil
}
