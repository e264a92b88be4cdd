// Package memory provides a config.Config whose value is set directly by
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/code-payments/dex-wallet/pkg/config"
)

type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
	reads    int
}

var _ config.Config = (*Config)(nil)

// NewConfig returns a config holding value. A nil value reports
// config.ErrNoValue, so typed wrappers fall back to their defaults.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++

	if c.shutdown {
		return nil, config.ErrShutdown
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.value == nil {
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
}

// Set replaces the value. Nil clears it.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// SetError makes Get fail with err. Nil restores normal behaviour.
func (c *Config) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Reads is the number of Get calls so far.
func (c *Config) Reads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reads
}
