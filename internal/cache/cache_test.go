package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

func TestRoundTrip(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	hash := HashBytes([]byte("file content"))
	require.NoError(t, c.Set("cohesion", "src/app.js", hash, payload{Count: 2, Names: []string{"a"}}))

	var got payload
	require.True(t, c.Get("cohesion", "src/app.js", hash, &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []string{"a"}, got.Names)
}

func TestHashMismatchMisses(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("cohesion", "src/app.js", HashBytes([]byte("v1")), payload{Count: 1}))

	var got payload
	assert.False(t, c.Get("cohesion", "src/app.js", HashBytes([]byte("v2")), &got))
}

func TestAnalysisKindsAreIsolated(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	hash := HashBytes([]byte("same content"))
	require.NoError(t, c.Set("cohesion", "src/app.js", hash, payload{Count: 1}))

	var got payload
	assert.False(t, c.Get("design", "src/app.js", hash, &got))
}

func TestExpiredEntryMisses(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 0, true)
	require.NoError(t, err)
	c.ttl = -1

	hash := HashBytes([]byte("content"))
	require.NoError(t, c.Set("cohesion", "src/app.js", hash, payload{Count: 1}))

	var got payload
	assert.False(t, c.Get("cohesion", "src/app.js", hash, &got))
}

func TestDisabledCacheStoresNothing(t *testing.T) {
	c := Disabled()

	hash := HashBytes([]byte("content"))
	require.NoError(t, c.Set("cohesion", "src/app.js", hash, payload{Count: 1}))

	var got payload
	assert.False(t, c.Get("cohesion", "src/app.js", hash, &got))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestClearAndStats(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	hash := HashBytes([]byte("content"))
	require.NoError(t, c.Set("cohesion", "a.js", hash, payload{}))
	require.NoError(t, c.Set("cohesion", "b.js", hash, payload{}))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.TotalSize, int64(0))

	require.NoError(t, c.Clear())
	var got payload
	assert.False(t, c.Get("cohesion", "a.js", hash, &got))
}