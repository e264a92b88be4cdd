package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// parser converts the text form of a value, as provided by environment
// variables and config files.
type parser[T any] func(string) (T, error)

// Config adapts an untyped config.Config into a typed config.Value with a
// default value.
type Config[T any] struct {
	override     config.Config
	defaultValue T
	parse        parser[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newConfig[T any](override config.Config, defaultValue T, parse parser[T]) *Config[T] {
	return &Config[T]{
		override:     override,
		defaultValue: defaultValue,
		parse:        parse,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *Config[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)

	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()

	if err == config.ErrNoValue {
		c.set(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	var newValue T
	switch override := override.(type) {
	case T:
		newValue = override
	case []byte:
		newValue, err = c.parse(string(override))
	case string:
		newValue, err = c.parse(override)
	default:
		return lastValue, ErrUnsuportedConversion
	}
	if err != nil {
		return lastValue, err
	}

	c.set(newValue)
	return newValue, nil
}

func (c *Config[T]) set(v T) {
	c.stateMu.Lock()
	c.lastValue = v
	c.stateMu.Unlock()
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *Config[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *Config[T]) Shutdown() {
	c.override.Shutdown()
}

func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newConfig(override, defaultValue, strconv.ParseBool)
}

func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newConfig(override, defaultValue, time.ParseDuration)
}

func NewFloat64Config(override config.Config, defaultValue float64) config.Float64 {
	return newConfig(override, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func NewInt64Config(override config.Config, defaultValue int64) config.Int64 {
	return newConfig(override, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newConfig(override, defaultValue, func(s string) (uint64, error) {
		return strconv.ParseUint(s, 10, 64)
	})
}

func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newConfig(override, defaultValue, func(s string) (string, error) {
		return s, nil
	})
}
