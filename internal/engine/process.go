package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/AndreyAkinshin/automark/internal/model"
)

// ProcessEngineName identifies the external process engine in configuration.
const ProcessEngineName = "process"

// ProcessEngine runs each test in a separate operating-system process.
//
// Commands are templates split with shell quoting rules after substituting
// {file} (absolute source path), {dir} (its directory), {name} (base name
// without extension) and {bin} (a build output path in a private temporary
// directory). The optional compile command runs once per submission.
type ProcessEngine struct {
	RunCommand     string
	CompileCommand string
}

// NewProcessEngine returns a process engine for the given templates.
func NewProcessEngine(run, compile string) *ProcessEngine {
	return &ProcessEngine{RunCommand: run, CompileCommand: compile}
}

// Name implements Engine.
func (e *ProcessEngine) Name() string {
	return ProcessEngineName
}

// Prepare resolves the command line and runs the compile step if any.
func (e *ProcessEngine) Prepare(sub model.Submission) (Program, error) {
	workDir, err := os.MkdirTemp("", "automark-*")
	if err != nil {
		return nil, &Fault{Kind: FaultCompile, Message: err.Error(), Cause: err}
	}
	prog := &processProgram{workDir: workDir}

	vars, err := templateVars(sub, workDir)
	if err != nil {
		prog.Close()
		return nil, &Fault{Kind: FaultCompile, Message: err.Error(), Cause: err}
	}

	if e.CompileCommand != "" {
		argv, err := buildCommand(e.CompileCommand, vars)
		if err != nil {
			prog.Close()
			return nil, &Fault{Kind: FaultCompile, Message: err.Error(), Cause: err}
		}
		var stderr bytes.Buffer
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Dir = vars["dir"]
		cmd.Stdout = &stderr
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			prog.Close()
			return nil, &Fault{Kind: FaultCompile, Message: exitMessage(err, stderr.String(), firstLine), Cause: err}
		}
	}

	argv, err := buildCommand(e.RunCommand, vars)
	if err != nil {
		prog.Close()
		return nil, &Fault{Kind: FaultCompile, Message: err.Error(), Cause: err}
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		prog.Close()
		return nil, &Fault{Kind: FaultCompile, Message: fmt.Sprintf("%s: command not found", argv[0]), Cause: err}
	}
	prog.argv = argv
	prog.dir = vars["dir"]
	return prog, nil
}

// templateVars resolves placeholder values. A submission without a path
// has its source written into workDir first.
func templateVars(sub model.Submission, workDir string) (map[string]string, error) {
	path := sub.Path
	if path == "" {
		name := sub.ID
		if name == "" {
			name = "submission"
		}
		path = filepath.Join(workDir, filepath.Base(name))
		if err := os.WriteFile(path, []byte(sub.Source), 0o600); err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	return map[string]string{
		"file": abs,
		"dir":  filepath.Dir(abs),
		"name": name,
		"bin":  filepath.Join(workDir, name),
	}, nil
}

func buildCommand(tpl string, vars map[string]string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, errors.New("command template is required")
	}
	expanded := tpl
	for key, value := range vars {
		expanded = strings.ReplaceAll(expanded, "{"+key+"}", shellQuote(value))
	}
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("parse command template: %w", err)
	}
	if len(fields) == 0 {
		return nil, errors.New("command is empty after expansion")
	}
	return fields, nil
}

// shellQuote protects substituted paths from being split on spaces.
func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t\n'\"\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

type processProgram struct {
	argv    []string
	dir     string
	workDir string
}

// Run starts a new process with input on stdin and returns its stdout.
// Stdin is a finite reader, so a program that reads too much sees end of
// file rather than blocking.
func (p *processProgram) Run(ctx context.Context, input string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	cmd.Dir = p.dir
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", processFault(err, stderr.String())
	}
	return stdout.String(), nil
}

func (p *processProgram) Close() error {
	if p.workDir == "" {
		return nil
	}
	return os.RemoveAll(p.workDir)
}

// processFault summarizes a failed run by the last line the program wrote
// to stderr, which for most interpreters names the exception.
func processFault(err error, stderr string) *Fault {
	msg := exitMessage(err, stderr, lastLine)
	if strings.Contains(msg, "EOFError") || strings.Contains(msg, ErrEndOfInput.Error()) {
		return &Fault{Kind: FaultEndOfInput, Message: msg, Cause: errors.Join(ErrEndOfInput, err)}
	}
	return &Fault{Kind: FaultRuntime, Message: msg, Cause: err}
}

func exitMessage(err error, output string, pick func(string) string) string {
	if line := pick(output); line != "" {
		return line
	}
	return err.Error()
}
