// Package project locates and loads the automark configuration that applies
// to the working directory.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/automark/internal/config"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = config.DefaultFileName

// ErrNoProjectRoot is returned when automark.yaml is not found.
var ErrNoProjectRoot = errors.New("automark.yaml not found in the current directory or any parent")

// FindRoot walks up from the current working directory until it finds automark.yaml.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds automark.yaml.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		info, err := os.Stat(filepath.Join(dir, ConfigFileName))
		if err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
