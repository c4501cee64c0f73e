package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetcode/facet/internal/cache"
	"github.com/facetcode/facet/pkg/config"
)

type countingSource struct {
	files map[string][]byte
	reads int
}

func (c *countingSource) Read(path string) ([]byte, error) {
	c.reads++
	if content, ok := c.files[path]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

var fragmented = []byte(`function processBatch(orders, users) {
  let a = 0;
  let b = 0;
  let x = 0;
  let y = 0;
  if (orders) {
    a = a + 1;
    b = a;
  }
  if (users) {
    b = b + 1;
    a = b;
  }
  if (x > 0) {
    y = x + 1;
  }
  if (y > 0) {
    x = y + 1;
  }
}
`)

func newService(t *testing.T) (*Service, *cache.Cache) {
	t.Helper()
	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)
	return New(WithConfig(config.DefaultConfig()), WithCache(c)), c
}

func TestAnalyzeCohesion(t *testing.T) {
	svc, _ := newService(t)
	src := &countingSource{files: map[string][]byte{"batch.js": fragmented}}

	result, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{})
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	assert.Equal(t, "processBatch", result.Findings[0].UnitName)
	assert.Equal(t, 2, result.Findings[0].ComponentCount)
	assert.Equal(t, 1, result.Summary.TotalFiles)
}

func TestAnalyzeCohesionUsesCache(t *testing.T) {
	svc, c := newService(t)
	src := &countingSource{files: map[string][]byte{"batch.js": fragmented}}

	first, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{})
	require.NoError(t, err)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)

	second, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestAnalyzeCohesionThresholdChangesMissCache(t *testing.T) {
	svc, c := newService(t)
	src := &countingSource{files: map[string][]byte{"batch.js": fragmented}}

	_, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{})
	require.NoError(t, err)

	// A stricter function threshold is a different cache key.
	result, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{FunctionThreshold: 90})
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, 90, result.Findings[0].Threshold)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
}

func TestAnalyzeCohesionNoCache(t *testing.T) {
	svc, c := newService(t)
	src := &countingSource{files: map[string][]byte{"batch.js": fragmented}}

	_, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{NoCache: true})
	require.NoError(t, err)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestAnalyzeDesign(t *testing.T) {
	svc, _ := newService(t)
	src := &countingSource{files: map[string][]byte{
		"scale.js": []byte("function scale(value) {\n  return value * 37;\n}\n"),
	}}

	result, err := svc.AnalyzeDesign(context.Background(), []string{"scale.js"}, src, DesignOptions{})
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "magic-number", result.Issues[0].Rule)
}

func TestClearCache(t *testing.T) {
	svc, c := newService(t)
	src := &countingSource{files: map[string][]byte{"batch.js": fragmented}}

	_, err := svc.AnalyzeCohesion(context.Background(), []string{"batch.js"}, src, CohesionOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCache())

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}
