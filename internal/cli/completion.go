package cli

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/automark/internal/errors"
	"github.com/AndreyAkinshin/automark/internal/output"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	shell := ""
	alias := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			out.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return errors.ExitConfigError
		case strings.HasPrefix(arg, "-"):
			out.ErrorPrefix("completion: unknown flag: %s", arg)
			return errors.ExitConfigError
		default:
			if shell != "" {
				out.ErrorPrefix("completion: unexpected argument: %s", arg)
				return errors.ExitConfigError
			}
			shell = arg
		}
	}

	if shell == "" {
		out.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		return errors.ExitConfigError
	}

	cmdName := "automark"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		out.Print("%s", generateBashCompletion(cmdName))
	case "zsh":
		out.Print("%s", generateZshCompletion(cmdName))
	case "fish":
		out.Print("%s", generateFishCompletion(cmdName))
	default:
		out.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return errors.ExitConfigError
	}
	return 0
}

func printCompletionUsage() {
	w := output.New()

	w.HelpTitle("automark completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("automark completion <shell> [--alias=<name>]")

	w.HelpSection("Options:")
	w.HelpFlag("--alias=<name>", "Generate completion for command alias", 14)
	w.HelpFlag("-h, --help", "Show this help", 14)

	w.HelpSection("Installation:")
	w.Println("  Bash:  eval \"$(automark completion bash)\"")
	w.Println("  Zsh:   eval \"$(automark completion zsh)\"")
	w.Println("  Fish:  automark completion fish | source")
	w.Println("")
}

type commandInfo struct {
	name        string
	description string
	flags       []string
}

// builtinCommands lists every top-level command with its own flags.
func builtinCommands() []commandInfo {
	return []commandInfo{
		{"grade", "Grade every submission in a folder", []string{"-r", "--recursive", "--no-recursive", "--prefix=", "--comparison=", "--max-width=", "-o", "--output=", "--upload"}},
		{"check", "List the test cases of a specification", []string{"--prefix="}},
		{"list", "List submissions in a folder", []string{"-r", "--recursive", "--no-recursive"}},
		{"run", "Run one submission against a specification", []string{"--case=", "--prefix="}},
		{"shell", "Interactive grading session", nil},
		{"init", "Create automark.yaml", []string{"--force"}},
		{"config", "Configuration utilities", nil},
		{"completion", "Generate shell completion", []string{"--alias="}},
		{"version", "Show version information", nil},
		{"help", "Show help", nil},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []string {
	return []string{"--quiet", "--verbose", "--config=", "--help", "--version"}
}

func commandNames() []string {
	cmds := builtinCommands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.name
	}
	return names
}

func generateBashCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	var cases strings.Builder
	for _, c := range builtinCommands() {
		if len(c.flags) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "        %s) cmd_flags=%q ;;\n", c.name, strings.Join(c.flags, " "))
	}

	return fmt.Sprintf(`# %[1]s bash completion
# Add to ~/.bashrc: eval "$(%[1]s completion bash)"

%[2]s() {
    local cur prev words cword
    _init_completion || return

    local commands=%[3]q
    local flags=%[4]q

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands} ${flags}" -- "${cur}"))
        return
    fi

    case "${words[1]}" in
        config)
            COMPREPLY=($(compgen -W "validate" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        local cmd_flags=""
        case "${words[1]}" in
%[5]s        esac
        COMPREPLY=($(compgen -W "${cmd_flags} ${flags}" -- "${cur}"))
        return
    fi

    # specs, folders and submissions are paths
    _filedir
}

complete -F %[2]s %[1]s
`, cmdName, funcName, strings.Join(commandNames(), " "), strings.Join(globalFlags(), " "), cases.String())
}

func generateZshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var commands strings.Builder
	for _, c := range builtinCommands() {
		fmt.Fprintf(&commands, "        '%s:%s'\n", c.name, c.description)
	}

	return fmt.Sprintf(`#compdef %[1]s
# %[1]s zsh completion
# Add to ~/.zshrc: eval "$(%[1]s completion zsh)"

%[2]s() {
    local -a commands
    commands=(
%[3]s    )

    if (( CURRENT == 2 )); then
        _describe -t commands 'command' commands
        _arguments -s '--quiet[Minimal output]' '--verbose[Debug logging]' '--config=[Configuration file]:file:_files'
        return
    fi

    case "${words[2]}" in
        config)
            _values 'subcommand' 'validate[Validate the configuration]'
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        *)
            _files
            ;;
    esac
}

compdef %[2]s %[1]s
`, cmdName, funcName, commands.String())
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %[1]s fish completion\n# Add to config: %[1]s completion fish | source\n\n", cmdName)

	for _, c := range builtinCommands() {
		fmt.Fprintf(&sb, "complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, c.name, c.description)
	}

	sb.WriteString("\n# Command flags\n")
	for _, c := range builtinCommands() {
		for _, f := range c.flags {
			if !strings.HasPrefix(f, "--") {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(f, "--"), "=")
			fmt.Fprintf(&sb, "complete -c %s -n '__fish_seen_subcommand_from %s' -l %s\n", cmdName, c.name, name)
		}
	}

	sb.WriteString("\n# Global flags\n")
	fmt.Fprintf(&sb, "complete -c %s -s q -l quiet -d 'Minimal output'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -s v -l verbose -d 'Debug logging'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l config -r -d 'Configuration file'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l help -d 'Show help'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l version -d 'Show version'\n", cmdName)

	sb.WriteString("\n# Subcommands\n")
	fmt.Fprintf(&sb, "complete -c %s -n '__fish_seen_subcommand_from config' -f -a 'validate' -d 'Validate the configuration'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -n '__fish_seen_subcommand_from completion' -f -a 'bash zsh fish'\n", cmdName)

	return sb.String()
}
