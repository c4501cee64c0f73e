// Package scanner is the service-level entry point for file discovery,
// both from the working tree and from git revisions.
package scanner

import (
	"path/filepath"

	"github.com/facetcode/facet/internal/scanner"
	"github.com/facetcode/facet/internal/vcs"
	"github.com/facetcode/facet/pkg/config"
	"github.com/facetcode/facet/pkg/parser"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
	RepoRoot       string
}

// Service provides file scanning.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// New creates a scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanPaths walks the given paths and returns all analyzable source files.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan := scanner.New(s.config)
	var files []string

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, &ScanError{Path: path, Err: err}
		}
		files = append(files, found...)
	}

	return &ScanResult{
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
	}, nil
}

// ScanRevision lists analyzable files from a git revision instead of the
// working tree, applying the same exclusion rules. The returned tree is
// the content source for the listed files.
func (s *Service) ScanRevision(path, rev string) (*ScanResult, vcs.Tree, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, &PathError{Path: path, Err: err}
	}

	repo, err := s.opener.PlainOpenWithDetect(absPath)
	if err != nil {
		return nil, nil, &GitError{Err: err}
	}

	tree, err := repo.TreeAt(rev)
	if err != nil {
		return nil, nil, &RevisionError{Rev: rev, Err: err}
	}

	paths, err := tree.Files()
	if err != nil {
		return nil, nil, &RevisionError{Rev: rev, Err: err}
	}

	scan := scanner.New(s.config)
	files := scan.FilterPaths(repo.RepoPath(), paths)

	return &ScanResult{
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
		RepoRoot:       repo.RepoPath(),
	}, tree, nil
}

// FilterBySize drops files larger than maxSize bytes.
func (s *Service) FilterBySize(files []string, maxSize int64) ([]string, int) {
	return scanner.FilterBySize(files, maxSize)
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not inside a git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "not a git repository (or any parent): " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// RevisionError indicates a revision could not be resolved or read.
type RevisionError struct {
	Rev string
	Err error
}

func (e *RevisionError) Error() string {
	return "failed to read revision " + e.Rev + ": " + e.Err.Error()
}

func (e *RevisionError) Unwrap() error {
	return e.Err
}
