package adapter

import (
	"strings"
	"sync"
)

// Credentials holds the YouTube API key. A key set at runtime overrides the
// configured one until cleared with SetKey("").
type Credentials struct {
	mu       sync.RWMutex
	override string
	fallback string
}

// NewCredentials creates credentials with the configured key as fallback
func NewCredentials(configured string) *Credentials {
	return &Credentials{fallback: strings.TrimSpace(configured)}
}

// SetKey replaces the runtime key
func (c *Credentials) SetKey(key string) {
	c.mu.Lock()
	c.override = strings.TrimSpace(key)
	c.mu.Unlock()
}

// Key returns the runtime key, or the configured key when none is set
func (c *Credentials) Key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.override != "" {
		return c.override
	}
	return c.fallback
}

// Source reports where the current key comes from: "runtime", "config" or ""
func (c *Credentials) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.override != "":
		return "runtime"
	case c.fallback != "":
		return "config"
	default:
		return ""
	}
}
