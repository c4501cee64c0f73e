package analyzer

import (
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facetcode/facet/pkg/parser"
)

func TestMapFilesCollectsResults(t *testing.T) {
	files := []string{"a.js", "b.js", "c.js"}

	results := MapFiles(files, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	})

	sort.Strings(results)
	assert.Equal(t, files, results)
}

func TestMapFilesSkipsErrors(t *testing.T) {
	files := []string{"a.js", "bad.js", "c.js"}

	results := MapFiles(files, func(p *parser.Parser, path string) (string, error) {
		if path == "bad.js" {
			return "", errors.New("boom")
		}
		return path, nil
	})

	sort.Strings(results)
	assert.Equal(t, []string{"a.js", "c.js"}, results)
}

func TestMapFilesNProgress(t *testing.T) {
	files := []string{"a.js", "b.js", "c.js", "d.js"}
	var ticks atomic.Int32

	results := MapFilesN(files, 2, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	}, func() {
		ticks.Add(1)
	})

	assert.Len(t, results, 4)
	assert.Equal(t, int32(4), ticks.Load())
}

func TestMapFilesEmpty(t *testing.T) {
	results := MapFiles(nil, func(p *parser.Parser, path string) (int, error) {
		return 0, nil
	})
	assert.Nil(t, results)
}
