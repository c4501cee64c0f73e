// Package remote resolves GitHub shorthand arguments ("owner/repo@ref")
// into shallow clones that can be analyzed like local paths.
package remote

import (
	"context"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects whether a path is a remote reference. A path that exists
// on the filesystem takes precedence and yields nil.
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 {
		ref = path[idx+1:]
		path = path[:idx]
	}

	if isGitHubShorthand(path) {
		return &Source{
			URL: "https://github.com/" + path,
			Ref: ref,
		}, nil
	}

	return nil, nil
}

// isGitHubShorthand returns true if path matches the owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash indicates a domain, not an owner.
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone performs a shallow clone of the source into a temp directory and
// records it in CloneDir. The caller owns cleanup via Cleanup.
func (s *Source) Clone(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "facet-remote-*")
	if err != nil {
		return err
	}

	opts := &git.CloneOptions{
		URL:   s.URL,
		Depth: 1,
	}
	if s.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
		opts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("failed to clone %s: %w", s.URL, err)
	}

	s.CloneDir = dir
	return nil
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
