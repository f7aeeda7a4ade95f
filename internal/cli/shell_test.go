package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/grader"
	"github.com/AndreyAkinshin/automark/internal/output"
	"github.com/AndreyAkinshin/automark/internal/publish"
	"github.com/AndreyAkinshin/automark/internal/session"
)

func newTestShell(t *testing.T) (sh *shell, stdout, stderr *bytes.Buffer) {
	t.Helper()
	registry := engine.NewRegistry()
	if err := registry.Register(engine.Language{Name: "lua", Extensions: []string{".lua"}, Engine: engine.NewLuaEngine()}); err != nil {
		t.Fatal(err)
	}
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	w := output.NewWithWriters(stdout, stderr, false)
	sess := session.New(registry, grader.DefaultOptions(), "")
	return newShell(context.Background(), sess, w), stdout, stderr
}

// step runs one line and returns what it printed.
func step(t *testing.T, sh *shell, stdout, stderr *bytes.Buffer, line string) (string, string) {
	t.Helper()
	stdout.Reset()
	stderr.Reset()
	if sh.execLine(line) {
		t.Fatalf("execLine(%q) requested exit", line)
	}
	return stdout.String(), stderr.String()
}

func TestShell_Script(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	spec := filepath.Join(dir, "spec one.txt")
	writeFile(t, spec, sumSpec)
	subs := filepath.Join(dir, "subs")
	writeFile(t, filepath.Join(subs, "good.lua"), sumLua)
	writeFile(t, filepath.Join(subs, "bad.lua"), "print(0)")
	writeFile(t, filepath.Join(subs, "extra", "late.lua"), sumLua)

	sh, stdout, stderr := newTestShell(t)

	tests := []struct {
		line       string
		wantOut    string
		wantErrOut string
	}{
		{"status", "Ready: no", ""},
		{"show 1", "", "no report yet"},
		{"report", "", "load a specification"},
		{`load "` + spec + `"`, "2 test cases loaded", ""},
		{"cases", "Expected Output", ""},
		{"case 2", "Input:\n      2\n      3\nExpected Output:\n      5\n", ""},
		{"case 9", "", "between 1 and 2"},
		{"folder " + subs, "2 submissions found", ""},
		{"files", "  1. bad.lua\n  2. good.lua\n", ""},
		{"recursive on", "recursive on, 3 submissions found", ""},
		{"recursive maybe", "", "usage: recursive on|off"},
		{"status", "Ready: yes", ""},
		{"report", "2 out of 3 submissions passed all test cases.", ""},
		{"show 1", "Failed Test Case", ""},
		{"show 3", "good.lua passed all 2 test cases", ""},
		{"prefix", "prefix: ###", ""},
		{"prefix @@", "", "invalid test specification"},
		{"status", "Spec: (none)", ""},
		{"frobnicate", "", `unknown command "frobnicate"`},
		{`load "unterminated`, "", "automark:"},
		{"", "", ""},
	}

	for _, tt := range tests {
		gotOut, gotErr := step(t, sh, stdout, stderr, tt.line)
		if tt.wantOut != "" && !strings.Contains(gotOut, tt.wantOut) {
			t.Errorf("%q: stdout = %q, want containing %q", tt.line, gotOut, tt.wantOut)
		}
		if tt.wantErrOut != "" && !strings.Contains(gotErr, tt.wantErrOut) {
			t.Errorf("%q: stderr = %q, want containing %q", tt.line, gotErr, tt.wantErrOut)
		}
		if tt.wantErrOut == "" && gotErr != "" {
			t.Errorf("%q: unexpected stderr %q", tt.line, gotErr)
		}
	}

	if !sh.execLine("exit") {
		t.Error("execLine(exit) = false, want true")
	}
}

func TestShell_ReportToFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "spec.txt"), sumSpec)
	writeFile(t, filepath.Join(dir, "subs", "good.lua"), sumLua)
	reportPath := filepath.Join(dir, "report.txt.zst")

	sh, stdout, stderr := newTestShell(t)
	step(t, sh, stdout, stderr, "load "+filepath.Join(dir, "spec.txt"))
	step(t, sh, stdout, stderr, "folder "+filepath.Join(dir, "subs"))
	got, errOut := step(t, sh, stdout, stderr, "report "+reportPath)
	if errOut != "" {
		t.Fatalf("report stderr = %q", errOut)
	}
	if !strings.Contains(got, "Report written to "+reportPath) {
		t.Errorf("stdout = %q", got)
	}
	if strings.Contains(got, "good.lua") {
		t.Error("report printed to stdout despite file argument")
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	text, err := publish.Decode(reportPath, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !strings.Contains(text, "good.lua") {
		t.Errorf("decoded report = %q", text)
	}
}
