package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AndreyAkinshin/automark/internal/config"
	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/grader"
)

// Project is the configuration in effect for a run. Root is empty when no
// automark.yaml was found and the defaults are used.
type Project struct {
	Root       string
	ConfigPath string
	Config     *config.Config
	Warnings   []string
}

// Load loads the configuration at path, or when path is empty, the nearest
// automark.yaml above the working directory. With neither, the defaults
// are used.
func Load(path string) (*Project, error) {
	if path != "" {
		return LoadFile(path)
	}
	root, err := FindRoot()
	if errors.Is(err, ErrNoProjectRoot) {
		return &Project{Config: config.Default()}, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads the automark.yaml in root.
func LoadProjectFrom(root string) (*Project, error) {
	return LoadFile(filepath.Join(root, ConfigFileName))
}

// LoadFile loads a configuration file by path.
func LoadFile(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, warnings, err := config.LoadAndValidate(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &Project{
		Root:       filepath.Dir(abs),
		ConfigPath: abs,
		Config:     cfg,
		Warnings:   warnings,
	}, nil
}

// Registry builds the language registry described by the configuration.
func (p *Project) Registry() (*engine.Registry, error) {
	registry := engine.NewRegistry()
	for _, name := range sortedLanguages(p.Config.Languages) {
		lang := p.Config.Languages[name]

		var eng engine.Engine
		switch lang.Engine {
		case config.EngineEmbedded:
			eng = engine.NewLuaEngine()
		case config.EngineProcess:
			eng = engine.NewProcessEngine(lang.Run, lang.Compile)
		default:
			return nil, fmt.Errorf("language %q: unknown engine %q", name, lang.Engine)
		}

		if err := registry.Register(engine.Language{Name: name, Extensions: lang.Extensions, Engine: eng}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// GraderOptions returns grading options from the configuration.
func (p *Project) GraderOptions() (grader.Options, error) {
	opts := grader.DefaultOptions()
	comparison, err := grader.ParseComparison(p.Config.Comparison)
	if err != nil {
		return opts, err
	}
	opts.Comparison = comparison
	if r := p.Config.Report; r != nil {
		if r.MaxWidth != nil {
			opts.MaxWidth = *r.MaxWidth
		}
		if r.Precision != nil {
			opts.Precision = *r.Precision
		}
	}
	return opts, nil
}

func sortedLanguages(languages map[string]config.LanguageConfig) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
