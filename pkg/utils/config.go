package utils

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config is a thread-safe set of string settings, usually loaded from the
// environment and .env files, with typed accessors and defaults
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfig creates a Config holding a copy of the provided values
func NewConfig(values map[string]string) *Config {
	config := &Config{
		values: make(map[string]string, len(values)),
	}

	maps.Copy(config.values, values)

	return config
}

// NewConfigFromEnv creates a Config from the process environment after loading
// the given .env files
func NewConfigFromEnv(files ...string) *Config {
	return NewConfig(LoadEnv(files...))
}

// lookup returns the raw value and whether it is set to something non-empty
func (c *Config) lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.values[key]
	return value, exists && value != ""
}

// Get retrieves a configuration value by key, or an empty string
func (c *Config) Get(key string) string {
	value, _ := c.lookup(key)
	return value
}

// GetWithDefault retrieves a configuration value by key with a fallback default
func (c *Config) GetWithDefault(key, defaultValue string) string {
	if value, ok := c.lookup(key); ok {
		return value
	}
	return defaultValue
}

// GetBool retrieves a configuration value as a boolean.
// Missing or unparsable values are false
func (c *Config) GetBool(key string) bool {
	return c.GetBoolWithDefault(key, false)
}

// GetBoolWithDefault retrieves a configuration value as a boolean with a fallback default
func (c *Config) GetBoolWithDefault(key string, defaultValue bool) bool {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}

	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}

	switch strings.ToLower(value) {
	case "yes", "on", "enabled":
		return true
	case "no", "off", "disabled":
		return false
	default:
		return defaultValue
	}
}

// GetInt retrieves a configuration value as an integer, or 0
func (c *Config) GetInt(key string) int {
	return c.GetIntWithDefault(key, 0)
}

// GetIntWithDefault retrieves a configuration value as an integer with a fallback default
func (c *Config) GetIntWithDefault(key string, defaultValue int) int {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDurationWithDefault retrieves a configuration value as a time.Duration
// (e.g. "90s", "5m") with a fallback default
func (c *Config) GetDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Set modifies a configuration value
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Has checks if a configuration key exists, even with an empty value
func (c *Config) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.values[key]
	return exists
}

// Keys returns all configuration keys in sorted order
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.values))
}
