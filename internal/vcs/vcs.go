// Package vcs provides the git abstractions facet needs: repository
// discovery and read access to file trees at arbitrary revisions.
package vcs

import (
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository provides access to git repository operations.
type Repository interface {
	// RepoPath returns the root path of the repository worktree.
	RepoPath() string
	// TreeAt returns the file tree for a revision ("HEAD", branch, tag, hash).
	TreeAt(rev string) (Tree, error)
}

// Tree is a read-only view of the files in a commit.
type Tree interface {
	// Files lists all file paths in the tree.
	Files() ([]string, error)
	// File returns the content of the file at path.
	File(path string) ([]byte, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens the repository containing path, walking
	// up parent directories until a .git directory is found.
	PlainOpenWithDetect(path string) (Repository, error)
}

// DefaultOpener returns an Opener backed by go-git.
func DefaultOpener() Opener {
	return gitOpener{}
}

type gitOpener struct{}

func (gitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo}, nil
}

type gitRepository struct {
	repo *git.Repository
}

func (r *gitRepository) RepoPath() string {
	wt, err := r.repo.Worktree()
	if err != nil {
		return ""
	}
	root := wt.Filesystem.Root()
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

func (r *gitRepository) TreeAt(rev string) (Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	return &gitTree{tree: tree}, nil
}

type gitTree struct {
	tree *object.Tree
}

func (t *gitTree) Files() ([]string, error) {
	var paths []string
	err := t.tree.Files().ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	return paths, err
}

func (t *gitTree) File(path string) ([]byte, error) {
	f, err := t.tree.File(path)
	if err != nil {
		return nil, err
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}
