// Package discover finds candidate submissions in a folder and loads their
// sources.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/model"
)

// LoadError reports a submission whose source could not be read. Grading
// continues without that submission.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("read submission %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Find returns the files under root whose extension is one of extensions,
// sorted by path. Without recursive only root itself is searched. Hidden
// directories and common dependency or cache directories are skipped.
func Find(root string, recursive bool, extensions []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("submissions folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("submissions folder %q is not a directory", root)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}
	matches := func(name string) bool {
		return wanted[strings.ToLower(filepath.Ext(name))]
	}

	var paths []string
	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read submissions folder: %w", err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && matches(entry.Name()) {
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
		return paths, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && matches(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk submissions folder: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// isSkippedDir returns true for directories that never hold submissions.
func isSkippedDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	excluded := map[string]bool{
		"__pycache__":  true,
		"node_modules": true,
		"vendor":       true,
	}
	return excluded[name]
}

// Load reads the sources of paths found under root. A submission's ID is its
// path relative to root, with forward slashes. Unreadable files are
// reported as *LoadError values and left out of the result.
func Load(root string, paths []string, registry *engine.Registry) ([]model.Submission, []error) {
	var (
		subs []model.Submission
		errs []error
	)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			continue
		}
		sub := model.Submission{
			ID:     submissionID(root, path),
			Path:   path,
			Source: string(data),
		}
		if registry != nil {
			if lang, ok := registry.ForPath(path); ok {
				sub.Language = lang.Name
			}
		}
		subs = append(subs, sub)
	}
	return subs, errs
}

func submissionID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
