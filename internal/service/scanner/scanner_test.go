package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetcode/facet/internal/vcs"
	"github.com/facetcode/facet/pkg/config"
	"github.com/facetcode/facet/pkg/parser"
)

func TestScanPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("function f() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.py"), []byte("def f(): pass"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n/a"), 0o644))

	svc := New(WithConfig(config.DefaultConfig()))
	result, err := svc.ScanPaths([]string{dir})
	require.NoError(t, err)

	assert.Len(t, result.Files, 2)
	assert.Len(t, result.LanguageGroups[parser.LangJavaScript], 1)
	assert.Len(t, result.LanguageGroups[parser.LangPython], 1)
}

func TestScanPathsDefaultsToCwd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("function f() {}"), 0o644))
	t.Chdir(dir)

	svc := New(WithConfig(config.DefaultConfig()))
	result, err := svc.ScanPaths(nil)
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
}

type fakeOpener struct {
	repo vcs.Repository
	err  error
}

func (f *fakeOpener) PlainOpenWithDetect(string) (vcs.Repository, error) {
	return f.repo, f.err
}

type fakeRepo struct {
	root string
	tree vcs.Tree
	err  error
}

func (r *fakeRepo) RepoPath() string { return r.root }

func (r *fakeRepo) TreeAt(string) (vcs.Tree, error) { return r.tree, r.err }

type fakeTree struct {
	files map[string][]byte
}

func (t *fakeTree) Files() ([]string, error) {
	var paths []string
	for p := range t.files {
		paths = append(paths, p)
	}
	return paths, nil
}

func (t *fakeTree) File(path string) ([]byte, error) {
	if content, ok := t.files[path]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

func TestScanRevision(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	tree := &fakeTree{files: map[string][]byte{
		"src/app.js":              []byte("function f() {}"),
		"src/app.test.js":         []byte("test()"),
		"node_modules/x/index.js": []byte("x"),
		"readme.md":               []byte("docs"),
	}}
	opener := &fakeOpener{repo: &fakeRepo{root: "/repo", tree: tree}}

	svc := New(WithConfig(cfg), WithOpener(opener))
	result, gotTree, err := svc.ScanRevision(".", "HEAD")
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.js"}, result.Files)
	assert.Equal(t, "/repo", result.RepoRoot)

	content, err := gotTree.File("src/app.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("function f() {}"), content)
}

func TestScanRevisionNotARepo(t *testing.T) {
	opener := &fakeOpener{err: errors.New("no repository")}

	svc := New(WithConfig(config.DefaultConfig()), WithOpener(opener))
	_, _, err := svc.ScanRevision(".", "HEAD")

	var gitErr *GitError
	assert.ErrorAs(t, err, &gitErr)
}

func TestScanRevisionBadRev(t *testing.T) {
	opener := &fakeOpener{repo: &fakeRepo{root: "/repo", err: errors.New("unknown revision")}}

	svc := New(WithConfig(config.DefaultConfig()), WithOpener(opener))
	_, _, err := svc.ScanRevision(".", "nope")

	var revErr *RevisionError
	assert.ErrorAs(t, err, &revErr)
}
