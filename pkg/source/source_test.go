package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.js")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1;"), 0o644))

	src := NewFilesystem()
	content, err := src.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("let x = 1;"), content)

	_, err = src.Read(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)
}

type stubTree map[string][]byte

func (s stubTree) Files() ([]string, error) {
	var paths []string
	for p := range s {
		paths = append(paths, p)
	}
	return paths, nil
}

func (s stubTree) File(path string) ([]byte, error) {
	if content, ok := s[path]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

func TestTreeSource(t *testing.T) {
	src := NewTree(stubTree{"src/app.js": []byte("function f() {}")})

	content, err := src.Read("src/app.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("function f() {}"), content)

	_, err = src.Read("missing.js")
	assert.Error(t, err)
}
