// Package cli provides command-line interface functionality for automark.
package cli

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/automark/internal/errors"
	"github.com/AndreyAkinshin/automark/internal/logging"
	"github.com/AndreyAkinshin/automark/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		out.Println("automark %s", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	defer logging.Sync() //nolint:errcheck // nothing useful to do on exit

	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "grade":
		return cmdGrade(cmdArgs, opts)
	case "check":
		return cmdCheck(cmdArgs, opts)
	case "list":
		return cmdList(cmdArgs, opts)
	case "run":
		return cmdRun(cmdArgs, opts)
	case "shell":
		return cmdShell(cmdArgs, opts)
	case "init":
		return cmdInit(cmdArgs)
	case "config":
		return cmdConfig(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	case "version":
		out.Println("automark %s", Version)
		return 0
	case "help":
		printUsage()
		return 0
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("run 'automark help' for a list of commands")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet      bool
	Verbose    bool
	ConfigPath string
}

// parseGlobalFlags extracts global flags from anywhere in args and returns
// the rest in order. Arguments after -- are passed through untouched.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--config requires a value")
			}
			opts.ConfigPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--config="):
			opts.ConfigPath = strings.TrimPrefix(arg, "--config=")
			if opts.ConfigPath == "" {
				return nil, nil, fmt.Errorf("--config requires a value")
			}
			i++
		case arg == "--":
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	out.SetQuiet(opts.Quiet)
	return opts, remaining, nil
}

// Help text alignment widths for consistent formatting.
const (
	widthCommand = 34
	widthFlag    = 20
)

func printUsage() {
	w := output.New()

	w.HelpTitle("automark - grade programs against input/output test cases")

	w.HelpSection("Usage:")
	w.HelpUsage("automark <command> [args]")

	w.HelpSection("Grading Commands:")
	w.HelpCommand("grade <spec> <folder>", "Grade every submission in a folder", widthCommand)
	w.HelpCommand("run <submission> <spec>", "Run one submission and show each verdict", widthCommand)
	w.HelpCommand("shell [spec] [folder]", "Interactive grading session", widthCommand)

	w.HelpSection("Inspection Commands:")
	w.HelpCommand("check <spec>", "Parse a test specification and list its cases", widthCommand)
	w.HelpCommand("list <folder>", "List the submissions found in a folder", widthCommand)

	w.HelpSection("Utility Commands:")
	w.HelpCommand("init [dir]", "Create automark.yaml with the defaults", widthCommand)
	w.HelpCommand("config validate", "Validate the configuration", widthCommand)
	w.HelpCommand("completion <shell>", "Generate shell completion (bash, zsh, fish)", widthCommand)
	w.HelpCommand("version", "Show version information", widthCommand)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("automark grade tests.txt submissions/", "Grade all submissions")
	w.HelpExample("automark grade tests.txt subs/ -r -o report.txt.gz", "Grade recursively, save compressed report")
	w.HelpExample("automark run subs/alice.py tests.txt --case=2", "Run a single test case")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", widthFlag)
	w.HelpFlag("-v, --verbose", "Debug logging", widthFlag)
	w.HelpFlag("--config=<path>", "Use this automark.yaml", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)
}
