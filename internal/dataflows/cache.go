// Package dataflows collects the upstream records for one analysis cycle:
// treasury yields and price histories from Yahoo Finance, economic series
// from FRED, and prediction markets from Polymarket. Each client caches its
// responses on disk so repeated cycles within the TTL stay offline.
package dataflows

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based JSON cache keyed by source, method and a hash of the
// request parameters.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

func NewCache(dir string, ttl time.Duration, enabled bool) *Cache {
	return &Cache{dir: dir, ttl: ttl, enabled: enabled}
}

func (c *Cache) key(source, method string, params any) string {
	data, _ := json.Marshal(params)
	return fmt.Sprintf("%s_%s_%x.json", source, method, md5.Sum(data))
}

// Get loads a cached response into result. Expired entries are removed and
// treated as misses.
func (c *Cache) Get(source, method string, params, result any) bool {
	if !c.enabled {
		return false
	}
	path := filepath.Join(c.dir, c.key(source, method, params))

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set writes a response to the cache. Failures are returned but callers may
// ignore them; caching is best effort.
func (c *Cache) Set(source, method string, params, data any) error {
	if !c.enabled {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, c.key(source, method, params)), payload, 0o644)
}
