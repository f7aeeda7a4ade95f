// Package session keeps the state of an interactive grading workflow: the
// current test specification, the submissions folder and the files found
// in it.
package session

import (
	"context"
	"errors"

	"github.com/AndreyAkinshin/automark/internal/discover"
	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/grader"
	"github.com/AndreyAkinshin/automark/internal/model"
	"github.com/AndreyAkinshin/automark/internal/testspec"
)

// ErrNotReady is returned by Generate when there are no test cases or no
// submission files.
var ErrNotReady = errors.New("session needs test cases and at least one submission")

// Session is not safe for concurrent use.
type Session struct {
	suite     *testspec.Suite
	registry  *engine.Registry
	opts      grader.Options
	specPath  string
	folder    string
	recursive bool
	files     []string
	skipped   []error
}

// New returns an empty session. prefix may be empty for the default.
func New(registry *engine.Registry, opts grader.Options, prefix string) *Session {
	return &Session{
		suite:    testspec.NewSuite(prefix),
		registry: registry,
		opts:     opts,
	}
}

// LoadSpec reads a specification file and makes it the current suite.
func (s *Session) LoadSpec(path string) error {
	raw, err := testspec.ReadFile(path)
	if err != nil {
		return err
	}
	if err := s.suite.SetRaw(raw); err != nil {
		s.specPath = ""
		return err
	}
	s.specPath = path
	return nil
}

// SetSpecText makes raw the current specification text.
func (s *Session) SetSpecText(raw string) error {
	s.specPath = ""
	return s.suite.SetRaw(raw)
}

// SetPrefix changes the delimiter prefix and re-parses the current text.
func (s *Session) SetPrefix(prefix string) error {
	err := s.suite.SetPrefix(prefix)
	if err != nil {
		s.specPath = ""
	}
	return err
}

// SetFolder sets the submissions folder and searches it. An empty folder
// clears the file list.
func (s *Session) SetFolder(folder string) error {
	s.folder = folder
	return s.Refresh()
}

// SetRecursive toggles searching subfolders and searches again.
func (s *Session) SetRecursive(recursive bool) error {
	s.recursive = recursive
	return s.Refresh()
}

// SetOptions replaces the grading options used by Generate.
func (s *Session) SetOptions(opts grader.Options) {
	s.opts = opts
}

// Options returns the grading options.
func (s *Session) Options() grader.Options {
	return s.opts
}

// Refresh searches the submissions folder again.
func (s *Session) Refresh() error {
	if s.folder == "" {
		s.files = nil
		return nil
	}
	files, err := discover.Find(s.folder, s.recursive, s.registry.Extensions())
	if err != nil {
		s.files = nil
		return err
	}
	s.files = files
	return nil
}

// Ready reports whether there is at least one case and one file.
func (s *Session) Ready() bool {
	return s.suite.Len() > 0 && len(s.files) > 0
}

func (s *Session) Cases() []model.TestCase {
	return s.suite.Cases()
}

func (s *Session) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

func (s *Session) Folder() string   { return s.folder }
func (s *Session) Recursive() bool  { return s.recursive }
func (s *Session) Prefix() string   { return s.suite.Prefix() }
func (s *Session) SpecPath() string { return s.specPath }
func (s *Session) Skipped() []error { return s.skipped }

// Generate loads the current files and grades them against the current
// cases. Files that cannot be read are left out and reported by Skipped.
func (s *Session) Generate(ctx context.Context) (*grader.Report, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	subs, skipped := discover.Load(s.folder, s.files, s.registry)
	s.skipped = skipped
	g := grader.New(engine.NewExecutor(s.registry), s.opts)
	return g.Generate(ctx, subs, s.suite.Cases())
}
