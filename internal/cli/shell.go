package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"github.com/AndreyAkinshin/automark/internal/errors"
	"github.com/AndreyAkinshin/automark/internal/grader"
	"github.com/AndreyAkinshin/automark/internal/output"
	"github.com/AndreyAkinshin/automark/internal/publish"
	"github.com/AndreyAkinshin/automark/internal/session"
)

const shellPrompt = "automark> "

// cmdShell starts an interactive grading session. An optional spec and
// folder are loaded before the first prompt.
func cmdShell(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printShellUsage()
		return 0
	}
	if len(args) > 2 {
		out.ErrorPrefix("shell: expected at most [spec] [folder]")
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject(opts)
	if proj == nil {
		return exitCode
	}
	registry, gopts, exitCode := loadRuntime(proj)
	if registry == nil {
		return exitCode
	}

	ctx := newRunContext()
	gopts.Observer = newLogObserver(ctx)
	sess := session.New(registry, gopts, proj.Config.Prefix)
	if proj.Config.Recursive {
		_ = sess.SetRecursive(true) // no folder yet, nothing to search
	}

	sh := newShell(ctx, sess, out)
	if len(args) > 0 {
		sh.exec([]string{"load", args[0]})
	}
	if len(args) > 1 {
		sh.exec([]string{"folder", args[1]})
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    shellCompleter,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		out.ErrorPrefix("shell: %v", err)
		return errors.ExitEnvironmentError
	}
	defer rl.Close()

	out.Info("Type 'help' for a list of commands.")
	for {
		line, err := rl.Readline()
		if stderrors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return 0
			}
			continue
		}
		if stderrors.Is(err, io.EOF) {
			return 0
		}
		if err != nil {
			out.ErrorPrefix("shell: %v", err)
			return errors.ExitRuntimeError
		}
		if sh.execLine(line) {
			return 0
		}
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".automark_history")
}

var shellCompleter = readline.NewPrefixCompleter(
	readline.PcItem("load"),
	readline.PcItem("prefix"),
	readline.PcItem("folder"),
	readline.PcItem("recursive", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("refresh"),
	readline.PcItem("cases"),
	readline.PcItem("case"),
	readline.PcItem("files"),
	readline.PcItem("show"),
	readline.PcItem("status"),
	readline.PcItem("report"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

// shell executes interactive commands against a session.
type shell struct {
	ctx    context.Context
	sess   *session.Session
	w      *output.Writer
	report *grader.Report // last generated report, for show
}

func newShell(ctx context.Context, sess *session.Session, w *output.Writer) *shell {
	return &shell{ctx: ctx, sess: sess, w: w}
}

// execLine splits line with shell quoting rules and runs it. It returns
// true when the shell should exit.
func (sh *shell) execLine(line string) bool {
	fields, err := shlex.Split(line)
	if err != nil {
		sh.w.ErrorPrefix("%v", err)
		return false
	}
	if len(fields) == 0 {
		return false
	}
	return sh.exec(fields)
}

func (sh *shell) exec(fields []string) bool {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "load":
		sh.load(args)
	case "prefix":
		sh.prefix(args)
	case "folder":
		sh.folder(args)
	case "recursive":
		sh.recursive(args)
	case "refresh":
		if sh.check(sh.sess.Refresh()) {
			sh.w.Println("%d submissions found", len(sh.sess.Files()))
		}
	case "cases":
		sh.cases()
	case "case":
		sh.showCase(args)
	case "files":
		sh.files()
	case "show":
		sh.show(args)
	case "status":
		sh.status()
	case "report":
		sh.generate(args)
	case "help", "?":
		sh.help()
	case "exit", "quit":
		return true
	default:
		sh.w.ErrorPrefix("unknown command %q (try 'help')", cmd)
	}
	return false
}

// check prints err and reports whether it was nil.
func (sh *shell) check(err error) bool {
	if err != nil {
		sh.w.ErrorPrefix("%v", err)
		return false
	}
	return true
}

func (sh *shell) usage(text string) {
	sh.w.ErrorPrefix("usage: %s", text)
}

func (sh *shell) load(args []string) {
	if len(args) != 1 {
		sh.usage("load <spec>")
		return
	}
	sh.report = nil
	if sh.check(sh.sess.LoadSpec(args[0])) {
		sh.w.Println("%d test cases loaded from %s", len(sh.sess.Cases()), args[0])
	}
}

func (sh *shell) prefix(args []string) {
	switch len(args) {
	case 0:
		sh.w.Println("prefix: %s", sh.sess.Prefix())
	case 1:
		sh.report = nil
		if sh.check(sh.sess.SetPrefix(args[0])) {
			sh.w.Println("prefix set to %q, %d test cases", args[0], len(sh.sess.Cases()))
		}
	default:
		sh.usage("prefix [prefix]")
	}
}

func (sh *shell) folder(args []string) {
	switch len(args) {
	case 0:
		if sh.sess.Folder() == "" {
			sh.w.Println("folder: (none)")
			return
		}
		sh.w.Println("folder: %s", sh.sess.Folder())
	case 1:
		sh.report = nil
		if sh.check(sh.sess.SetFolder(args[0])) {
			sh.w.Println("%d submissions found in %s", len(sh.sess.Files()), args[0])
		}
	default:
		sh.usage("folder [path]")
	}
}

func (sh *shell) recursive(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		sh.usage("recursive on|off")
		return
	}
	if sh.check(sh.sess.SetRecursive(args[0] == "on")) {
		sh.w.Println("recursive %s, %d submissions found", args[0], len(sh.sess.Files()))
	}
}

func (sh *shell) cases() {
	tcs := sh.sess.Cases()
	if len(tcs) == 0 {
		sh.w.Println("no test cases loaded")
		return
	}
	sh.check(printCases(sh.w, tcs, sh.sess.Options()))
}

// index parses a 1-based position in a list of n items.
func (sh *shell) index(args []string, n int, usage string) (int, bool) {
	if len(args) != 1 {
		sh.usage(usage)
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		sh.w.ErrorPrefix("%s: must be a number between 1 and %d", args[0], n)
		return 0, false
	}
	return i, true
}

func (sh *shell) showCase(args []string) {
	tcs := sh.sess.Cases()
	i, ok := sh.index(args, len(tcs), "case <n>")
	if !ok {
		return
	}
	tc := tcs[i-1]
	sh.w.Println("Input:")
	sh.w.Detail(tc.Input)
	sh.w.Println("Expected Output:")
	sh.w.Detail(tc.Expected)
}

func (sh *shell) files() {
	files := sh.sess.Files()
	if len(files) == 0 {
		sh.w.Println("no submissions found")
		return
	}
	for i, f := range files {
		if rel, err := filepath.Rel(sh.sess.Folder(), f); err == nil {
			f = filepath.ToSlash(rel)
		}
		sh.w.Println("%3d. %s", i+1, f)
	}
}

func (sh *shell) show(args []string) {
	if sh.report == nil {
		sh.w.ErrorPrefix("no report yet (run 'report' first)")
		return
	}
	i, ok := sh.index(args, sh.report.Total(), "show <n>")
	if !ok {
		return
	}
	res := sh.report.Results[i-1]
	t, ok := sh.report.Detail(res.Submission.ID)
	if !ok {
		sh.w.Println("%s passed all %d test cases", res.Submission.ID, len(res.Results))
		return
	}
	text, err := t.Render()
	if !sh.check(err) {
		return
	}
	sh.w.Println("%s", res.Submission.ID)
	sh.w.Println("%s", text)
}

func (sh *shell) status() {
	spec := sh.sess.SpecPath()
	switch {
	case spec != "":
	case len(sh.sess.Cases()) > 0:
		spec = "(text)"
	default:
		spec = "(none)"
	}
	folder := sh.sess.Folder()
	if folder == "" {
		folder = "(none)"
	}
	recursive := "off"
	if sh.sess.Recursive() {
		recursive = "on"
	}
	ready := "no"
	if sh.sess.Ready() {
		ready = "yes"
	}

	sh.w.SummaryItem("Spec", spec)
	sh.w.SummaryItem("Prefix", sh.sess.Prefix())
	sh.w.SummaryItem("Cases", strconv.Itoa(len(sh.sess.Cases())))
	sh.w.SummaryItem("Folder", folder)
	sh.w.SummaryItem("Recursive", recursive)
	sh.w.SummaryItem("Submissions", strconv.Itoa(len(sh.sess.Files())))
	sh.w.SummaryItem("Ready", ready)
}

func (sh *shell) generate(args []string) {
	if len(args) > 1 {
		sh.usage("report [file]")
		return
	}
	report, err := sh.sess.Generate(sh.ctx)
	if stderrors.Is(err, session.ErrNotReady) {
		sh.w.ErrorPrefix("load a specification and a folder with submissions first")
		return
	}
	if !sh.check(err) {
		return
	}
	for _, e := range sh.sess.Skipped() {
		sh.w.Warning("%v (skipped)", e)
	}
	text, err := report.Render()
	if !sh.check(err) {
		return
	}
	sh.report = report

	if len(args) == 1 {
		location, err := publish.FileSink{Path: args[0]}.Publish(sh.ctx, "", text)
		if !sh.check(err) {
			return
		}
		sh.w.Println("Report written to %s", location)
	} else {
		sh.w.Print("%s", text)
	}
	sh.w.Println("%d out of %d submissions passed all test cases.", report.Perfect, report.Total())
}

func (sh *shell) help() {
	cmds := []struct{ name, desc string }{
		{"load <spec>", "Load a test specification file"},
		{"prefix [prefix]", "Show or change the delimiter prefix"},
		{"folder [path]", "Show or change the submissions folder"},
		{"recursive on|off", "Search subfolders"},
		{"refresh", "Search the folder again"},
		{"cases", "List the test cases"},
		{"case <n>", "Show one test case"},
		{"files", "List the submissions found"},
		{"report [file]", "Grade and print or save the report"},
		{"show <n>", "Show the failures of submission n in the last report"},
		{"status", "Show the session state"},
		{"exit", "Leave the shell"},
	}
	for _, c := range cmds {
		sh.w.HelpCommand(c.name, c.desc, 18)
	}
}

func printShellUsage() {
	w := output.New()

	w.HelpTitle("automark shell - interactive grading session")

	w.HelpSection("Usage:")
	w.HelpUsage("automark shell [spec] [folder]")

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", 10)

	w.HelpSection("Examples:")
	w.HelpExample("automark shell tests.txt subs/", "Start with a spec and folder loaded")
	w.Println("")
}
