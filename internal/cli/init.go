package cli

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/automark/internal/config"
	"github.com/AndreyAkinshin/automark/internal/errors"
	"github.com/AndreyAkinshin/automark/internal/output"
)

const initHeader = `# automark configuration
# Languages listed here replace the built-in defaults.
# Storage for --upload:
#   storage:
#     endpoint: play.min.io
#     access_key: $AUTOMARK_ACCESS_KEY
#     secret_key: $AUTOMARK_SECRET_KEY
#     bucket: grading
`

// cmdInit writes an automark.yaml with the default settings. An existing
// file is left alone unless --force is given.
func cmdInit(args []string) int {
	if wantsHelp(args) {
		printInitUsage()
		return 0
	}

	var force bool
	positional, err := parseCommandArgs(args, map[string]*bool{"--force": &force}, nil)
	if err != nil {
		out.ErrorPrefix("init: %v", err)
		return errors.ExitConfigError
	}
	if len(positional) > 1 {
		out.ErrorPrefix("init: expected at most one directory")
		return errors.ExitConfigError
	}
	dir := "."
	if len(positional) == 1 {
		dir = positional[0]
	}
	path := filepath.Join(dir, config.DefaultFileName)

	if _, err := os.Stat(path); err == nil && !force {
		out.Info("%s already exists (use --force to overwrite)", path)
		return 0
	}

	data, err := defaultConfigYAML()
	if err != nil {
		out.ErrorPrefix("init: %v", err)
		return errors.ExitRuntimeError
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		out.ErrorPrefix("%v", errors.IO(dir, "cannot create directory", err))
		return errors.ExitRuntimeError
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		out.ErrorPrefix("%v", errors.IO(path, "cannot write configuration", err))
		return errors.ExitRuntimeError
	}

	out.Success("Created %s", path)
	out.Hint("next: automark check <spec>, then automark grade <spec> <folder>")
	return 0
}

// defaultConfigYAML renders the default configuration.
func defaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(initHeader)
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func printInitUsage() {
	w := output.New()

	w.HelpTitle("automark init - create automark.yaml")

	w.HelpSection("Usage:")
	w.HelpUsage("automark init [dir] [--force]")

	w.HelpSection("Options:")
	w.HelpFlag("--force", "Overwrite an existing automark.yaml", 10)
	w.HelpFlag("-h, --help", "Show this help", 10)
	w.Println("")
}
