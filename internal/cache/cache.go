// Package cache provides the layered (memory + disk) cache used to keep hot
// candidate sets out of the document store on repeated searches.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the caching interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from an arbitrary identifier, namespaced so
// a format change can invalidate everything at once.
func Key(id string) string {
	hash := sha256.Sum256([]byte(id))
	return "appealsmith:v1:" + hex.EncodeToString(hash[:])
}

// Layered checks memory first, then disk, promoting disk hits to memory.
type Layered struct {
	memory Cache
	disk   Cache
}

// NewLayered creates a layered cache over a fresh memory and disk cache.
func NewLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Layered {
	return &Layered{
		memory: NewMemory(memoryTTL, 10*time.Minute),
		disk:   NewDisk(diskDir, diskTTL),
	}
}

// Get retrieves a value, promoting disk hits into the memory layer.
func (c *Layered) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in both layers.
func (c *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers.
func (c *Layered) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both layers.
func (c *Layered) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
