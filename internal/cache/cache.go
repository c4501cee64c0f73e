// Package cache persists per-file analysis results between runs, keyed by
// content hash so edits invalidate stale entries.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// version is baked into every key so entries written by an incompatible
// finding schema never deserialize into the wrong shape.
const version = "v1"

// Cache is a directory of JSON entries, one per (analysis, file) pair.
// A disabled cache accepts every call and stores nothing.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

type entry struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a cache rooted at dir with the given TTL in hours.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Disabled returns a cache that never stores anything.
func Disabled() *Cache {
	return &Cache{}
}

// HashBytes returns the BLAKE3 hash of data as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get unmarshals a cached value into out when the entry exists, carries
// the expected content hash, and has not expired.
func (c *Cache) Get(analysis, path, hash string, out any) bool {
	if !c.enabled {
		return false
	}

	file := c.keyPath(analysis, path)
	raw, err := os.ReadFile(file)
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return false
	}
	if e.Hash != hash {
		return false
	}
	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(file)
		return false
	}

	return json.Unmarshal(e.Data, out) == nil
}

// Set stores a value for the given analysis, file, and content hash.
func (c *Cache) Set(analysis, path, hash string, value any) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(analysis, path), raw, 0o600)
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(analysis, path string) string {
	sum := blake3.Sum256([]byte(version + "|" + analysis + "|" + path))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats summarizes what the cache currently holds.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats walks the cache directory and counts entries.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.enabled {
		return stats, nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
