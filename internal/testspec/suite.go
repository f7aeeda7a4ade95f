package testspec

import (
	"os"
	"strings"
	"sync"

	"github.com/AndreyAkinshin/automark/internal/model"
)

// Suite holds the current specification text and the cases parsed from it.
// Changing the text or the prefix re-parses the whole specification and
// replaces the previous cases at once; a failed parse clears both the text
// and the cases.
type Suite struct {
	mu     sync.RWMutex
	raw    string
	prefix string
	cases  []model.TestCase
}

// NewSuite returns an empty suite using prefix, or DefaultPrefix when
// prefix is empty.
func NewSuite(prefix string) *Suite {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Suite{prefix: prefix}
}

// SetRaw replaces the specification text and re-parses it.
func (s *Suite) SetRaw(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	return s.rebuild()
}

// SetPrefix replaces the delimiter prefix and re-parses the stored text.
// With no stored text the prefix is only recorded.
func (s *Suite) SetPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
	if s.raw == "" {
		return nil
	}
	return s.rebuild()
}

func (s *Suite) rebuild() error {
	cases, err := Parse(s.raw, s.prefix)
	if err != nil {
		s.raw = ""
		s.cases = nil
		return err
	}
	s.cases = cases
	return nil
}

// Cases returns a copy of the current cases.
func (s *Suite) Cases() []model.TestCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cases == nil {
		return nil
	}
	out := make([]model.TestCase, len(s.cases))
	copy(out, s.cases)
	return out
}

// Len returns the number of cases.
func (s *Suite) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Prefix returns the delimiter prefix.
func (s *Suite) Prefix() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefix
}

// Raw returns the stored specification text.
func (s *Suite) Raw() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// ReadFile reads a specification file and normalizes CRLF line endings so
// that delimiter lines are recognized regardless of platform.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// LoadFile reads and parses a specification file.
func LoadFile(path, prefix string) ([]model.TestCase, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw, prefix)
}
