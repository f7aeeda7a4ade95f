package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/automark/internal/config"
	"github.com/AndreyAkinshin/automark/internal/discover"
	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/errors"
	"github.com/AndreyAkinshin/automark/internal/grader"
	"github.com/AndreyAkinshin/automark/internal/logging"
	"github.com/AndreyAkinshin/automark/internal/model"
	"github.com/AndreyAkinshin/automark/internal/output"
	"github.com/AndreyAkinshin/automark/internal/project"
	"github.com/AndreyAkinshin/automark/internal/publish"
	"github.com/AndreyAkinshin/automark/internal/table"
	"github.com/AndreyAkinshin/automark/internal/testspec"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// loadProject loads the configuration, prints its warnings and sets up
// logging. Returns the project and exit code 0 on success, or nil and the
// exit code on failure.
func loadProject(opts *GlobalOptions) (*project.Project, int) {
	proj, err := project.Load(opts.ConfigPath)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.ExitConfigError
	}
	for _, w := range proj.Warnings {
		out.Warning("%s", w)
	}
	if err := setupLogging(proj.Config.Logging, opts); err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.ExitConfigError
	}
	return proj, 0
}

// setupLogging initializes the global logger. -v and -q override the
// configured level.
func setupLogging(cfg *config.LoggingConfig, opts *GlobalOptions) error {
	lc := logging.Config{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat}
	if cfg != nil {
		if cfg.Level != "" {
			lc.Level = cfg.Level
		}
		if cfg.Format != "" {
			lc.Format = cfg.Format
		}
	}
	switch {
	case opts.Verbose:
		lc.Level = "debug"
	case opts.Quiet:
		lc.Level = "error"
	}
	return logging.Init(lc)
}

// loadRuntime builds the language registry and grading options of proj.
func loadRuntime(proj *project.Project) (*engine.Registry, grader.Options, int) {
	registry, err := proj.Registry()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, grader.Options{}, errors.ExitConfigError
	}
	gopts, err := proj.GraderOptions()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, grader.Options{}, errors.ExitConfigError
	}
	return registry, gopts, 0
}

// newRunContext returns a context carrying a fresh run id for log
// correlation.
func newRunContext() context.Context {
	return logging.WithRunID(context.Background(), uuid.NewString())
}

// parseCommandArgs splits args into positionals and flags. Value flags
// accept "--name=value" and "--name value". A name present in both maps is
// a flag with an optional "=value".
func parseCommandArgs(args []string, boolFlags map[string]*bool, valueFlags map[string]*string) ([]string, error) {
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		vp, isValue := valueFlags[name]
		bp, isBool := boolFlags[name]
		switch {
		case hasValue && isValue:
			*vp = value
			if isBool {
				*bp = true
			}
		case isBool && !hasValue:
			*bp = true
		case isBool:
			return nil, fmt.Errorf("%s does not take a value", name)
		case isValue:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", name)
			}
			i++
			*vp = args[i]
		default:
			return nil, fmt.Errorf("unknown flag %q", name)
		}
	}
	return positional, nil
}

// loadCases reads and parses a test specification.
func loadCases(path, prefix string) ([]model.TestCase, error) {
	tcs, err := testspec.LoadFile(path, prefix)
	if err == nil {
		return tcs, nil
	}
	if stderrors.Is(err, testspec.ErrInvalidSpec) {
		return nil, errors.WrapKind(errors.KindSpec, err, path)
	}
	return nil, errors.IO(path, "cannot read test specification", err)
}

// cmdGrade grades every submission in a folder and publishes the report.
// resolveRecursive lets -r and --no-recursive override the configured value.
func resolveRecursive(on, off, configured bool) bool {
	switch {
	case on:
		return true
	case off:
		return false
	}
	return configured
}

func cmdGrade(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printGradeUsage()
		return 0
	}

	var recursive, noRecursive, upload bool
	var prefix, comparison, maxWidth, outputPath, uploadKey string
	positional, err := parseCommandArgs(args,
		map[string]*bool{"-r": &recursive, "--recursive": &recursive, "--no-recursive": &noRecursive, "--upload": &upload},
		map[string]*string{
			"--prefix":     &prefix,
			"--comparison": &comparison,
			"--max-width":  &maxWidth,
			"-o":           &outputPath,
			"--output":     &outputPath,
			"--upload":     &uploadKey,
		})
	if err != nil {
		out.ErrorPrefix("grade: %v", err)
		return errors.ExitConfigError
	}
	if len(positional) != 2 {
		out.ErrorPrefix("grade: expected <spec> and <folder>")
		out.Hint("usage: automark grade <spec> <folder> [-r] [-o <file>]")
		return errors.ExitConfigError
	}
	specPath, folder := positional[0], positional[1]
	if recursive && noRecursive {
		out.ErrorPrefix("grade: --recursive and --no-recursive are mutually exclusive")
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

	if prefix == "" {
		prefix = proj.Config.Prefix
	}
	if comparison != "" {
		c, err := grader.ParseComparison(comparison)
		if err != nil {
			out.ErrorPrefix("grade: %v", err)
			return errors.ExitConfigError
		}
		gopts.Comparison = c
	}
	if maxWidth != "" {
		n, err := strconv.Atoi(maxWidth)
		if err != nil || n < 0 {
			out.ErrorPrefix("grade: invalid --max-width %q", maxWidth)
			return errors.ExitConfigError
		}
		gopts.MaxWidth = n
	}
	recursive = resolveRecursive(recursive, noRecursive, proj.Config.Recursive)

	var sinks publish.Multi
	if outputPath != "" {
		sinks = append(sinks, publish.FileSink{Path: outputPath})
	} else {
		sinks = append(sinks, publish.WriterSink{W: out.Out(), Label: "stdout"})
	}
	if upload {
		sink, err := newObjectSink(proj.Config.Storage)
		if err != nil {
			out.ErrorPrefix("grade: %v", err)
			return errors.GetExitCode(err)
		}
		sinks = append(sinks, sink)
	}

	tcs, err := loadCases(specPath, prefix)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	paths, err := discover.Find(folder, recursive, registry.Extensions())
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}
	subs, loadErrs := discover.Load(folder, paths, registry)
	for _, e := range loadErrs {
		out.Warning("%v (skipped)", e)
	}

	ctx := newRunContext()
	gopts.Observer = newLogObserver(ctx)
	logging.Info(ctx, "grading started")

	report, err := grader.New(engine.NewExecutor(registry), gopts).Generate(ctx, subs, tcs)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}
	text, err := report.Render()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}

	location, err := sinks.Publish(ctx, uploadKey, text)
	if err != nil {
		out.ErrorPrefix("publish report: %v", err)
		return errors.ExitRuntimeError
	}
	if outputPath != "" || upload {
		out.Info("Report written to %s", location)
	}
	out.Println("%d out of %d submissions passed all test cases.", report.Perfect, report.Total())
	return 0
}

// newObjectSink builds the object storage sink from configuration.
func newObjectSink(storage *config.StorageConfig) (*publish.ObjectSink, error) {
	if !storage.Enabled() {
		return nil, errors.Config("--upload needs a storage bucket in automark.yaml")
	}
	accessKey, secretKey := storage.Credentials()
	useSSL := true
	if storage.UseSSL != nil {
		useSSL = *storage.UseSSL
	}
	sink, err := publish.NewObjectSink(publish.ObjectConfig{
		Endpoint:  storage.Endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    useSSL,
		Bucket:    storage.Bucket,
		Prefix:    storage.Prefix,
	})
	if err != nil {
		return nil, errors.WrapKind(errors.KindEnvironment, err, "object storage")
	}
	return sink, nil
}

// cmdCheck parses a test specification and lists its cases.
func cmdCheck(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printCheckUsage()
		return 0
	}

	var prefix string
	positional, err := parseCommandArgs(args, nil, map[string]*string{"--prefix": &prefix})
	if err != nil {
		out.ErrorPrefix("check: %v", err)
		return errors.ExitConfigError
	}
	if len(positional) != 1 {
		out.ErrorPrefix("check: expected <spec>")
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject(opts)
	if proj == nil {
		return exitCode
	}
	gopts, err := proj.GraderOptions()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	if prefix == "" {
		prefix = proj.Config.Prefix
	}

	tcs, err := loadCases(positional[0], prefix)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if err := printCases(out, tcs, gopts); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}
	out.Info("%d test cases", len(tcs))
	return 0
}

// casesTable lays out test cases with their 1-based numbers.
func casesTable(tcs []model.TestCase, gopts grader.Options) (*table.Table, error) {
	t := table.New()
	if err := t.SetMaxWidth(gopts.MaxWidth); err != nil {
		return nil, err
	}
	if err := t.SetColsDType(table.Int, table.Text, table.Text); err != nil {
		return nil, err
	}
	if err := t.SetColsAlign(table.AlignRight, table.AlignLeft, table.AlignLeft); err != nil {
		return nil, err
	}
	if err := t.Header("#", "Input", "Expected Output"); err != nil {
		return nil, err
	}
	for i, tc := range tcs {
		if err := t.AddRow(i+1, tc.Input, tc.Expected); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func printCases(w *output.Writer, tcs []model.TestCase, gopts grader.Options) error {
	t, err := casesTable(tcs, gopts)
	if err != nil {
		return err
	}
	text, err := t.Render()
	if err != nil {
		return err
	}
	w.Println("%s", text)
	return nil
}

// cmdList lists the submissions found in a folder.
func cmdList(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printListUsage()
		return 0
	}

	var recursive, noRecursive bool
	positional, err := parseCommandArgs(args,
		map[string]*bool{"-r": &recursive, "--recursive": &recursive, "--no-recursive": &noRecursive}, nil)
	if err != nil {
		out.ErrorPrefix("list: %v", err)
		return errors.ExitConfigError
	}
	if recursive && noRecursive {
		out.ErrorPrefix("list: --recursive and --no-recursive are mutually exclusive")
		return errors.ExitConfigError
	}
	if len(positional) != 1 {
		out.ErrorPrefix("list: expected <folder>")
		return errors.ExitConfigError
	}
	folder := positional[0]

	proj, exitCode := loadProject(opts)
	if proj == nil {
		return exitCode
	}
	registry, _, exitCode := loadRuntime(proj)
	if registry == nil {
		return exitCode
	}
	recursive = resolveRecursive(recursive, noRecursive, proj.Config.Recursive)

	paths, err := discover.Find(folder, recursive, registry.Extensions())
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}

	for _, line := range submissionLines(folder, paths, registry) {
		out.Println("%s", line)
	}
	out.Info("%d submissions", len(paths))
	return 0
}

// submissionLines returns "<id>  (<Language>)" for each path, padded so
// the languages line up.
func submissionLines(folder string, paths []string, registry *engine.Registry) []string {
	title := cases.Title(language.English)
	ids := make([]string, len(paths))
	width := 0
	for i, p := range paths {
		rel, err := filepath.Rel(folder, p)
		if err != nil {
			rel = p
		}
		ids[i] = filepath.ToSlash(rel)
		width = max(width, len(ids[i]))
	}

	lines := make([]string, len(paths))
	for i, p := range paths {
		name := "unknown"
		if lang, ok := registry.ForPath(p); ok {
			name = title.String(lang.Name)
		}
		lines[i] = fmt.Sprintf("%-*s  (%s)", width, ids[i], name)
	}
	return lines
}

// cmdRun runs a single submission against a test specification and shows
// each verdict. The exit code is 1 when any case fails.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}

	var prefix, caseArg string
	positional, err := parseCommandArgs(args, nil, map[string]*string{"--prefix": &prefix, "--case": &caseArg})
	if err != nil {
		out.ErrorPrefix("run: %v", err)
		return errors.ExitConfigError
	}
	if len(positional) != 2 {
		out.ErrorPrefix("run: expected <submission> and <spec>")
		return errors.ExitConfigError
	}
	subPath, specPath := positional[0], positional[1]

	proj, exitCode := loadProject(opts)
	if proj == nil {
		return exitCode
	}
	registry, gopts, exitCode := loadRuntime(proj)
	if registry == nil {
		return exitCode
	}
	if prefix == "" {
		prefix = proj.Config.Prefix
	}

	tcs, err := loadCases(specPath, prefix)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	first := 1
	if caseArg != "" {
		n, err := strconv.Atoi(caseArg)
		if err != nil || n < 1 || n > len(tcs) {
			out.ErrorPrefix("run: --case must be between 1 and %d", len(tcs))
			return errors.ExitConfigError
		}
		tcs = tcs[n-1 : n]
		first = n
	}

	lang, ok := registry.ForPath(subPath)
	if !ok {
		out.ErrorPrefix("%s: no language configured for extension %q", subPath, filepath.Ext(subPath))
		return errors.ExitConfigError
	}
	source, err := os.ReadFile(subPath)
	if err != nil {
		out.ErrorPrefix("%v", errors.IO(subPath, "cannot read submission", err))
		return errors.ExitRuntimeError
	}
	sub := model.Submission{
		ID:       filepath.Base(subPath),
		Path:     subPath,
		Language: lang.Name,
		Source:   string(source),
	}

	ctx := newRunContext()
	gopts.Observer = newLogObserver(ctx)
	res := grader.New(engine.NewExecutor(registry), gopts).Grade(ctx, sub, tcs)

	for _, r := range res.Results {
		printVerdict(out, r, first+r.Index-1)
	}
	out.Println("")
	out.Println("%s: %d/%d test cases passed", sub.ID, res.Score, len(res.Results))
	if !res.Perfect() {
		return errors.ExitRuntimeError
	}
	return 0
}

// printVerdict shows one result. Failed cases include the expected output.
func printVerdict(w *output.Writer, r model.TestResult, number int) {
	w.Verdict(r.Success, "case %d (%s)", number, r.Duration.Round(time.Millisecond))
	if r.Success {
		w.Detail(r.Actual)
		return
	}
	w.Detail("expected:")
	w.Detail(r.Case.Expected)
	w.Detail("actual:")
	w.Detail(r.Actual)
}

// cmdConfig handles configuration utilities.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 {
		out.ErrorPrefix("config: subcommand required (validate)")
		return errors.ExitConfigError
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		return errors.ExitConfigError
	}
}

func cmdConfigValidate(opts *GlobalOptions) int {
	proj, exitCode := loadProject(opts)
	if proj == nil {
		return exitCode
	}

	registry, _, exitCode := loadRuntime(proj)
	if registry == nil {
		return exitCode
	}

	source := proj.ConfigPath
	if source == "" {
		source = "built-in defaults (no " + config.DefaultFileName + " found)"
	}
	out.Success("Configuration is valid.")
	out.SummaryItem("Config", source)
	out.SummaryItem("Languages", strings.Join(registry.Names(), ", "))
	out.SummaryItem("Extensions", strings.Join(registry.Extensions(), " "))
	if proj.Config.Storage.Enabled() {
		out.SummaryItem("Storage", proj.Config.Storage.Endpoint+"/"+proj.Config.Storage.Bucket)
	}
	if len(proj.Warnings) > 0 {
		out.SummaryItem("Warnings", strconv.Itoa(len(proj.Warnings)))
	}
	return 0
}

// Help text alignment width for command options.
const widthOption = 22

func printGradeUsage() {
	w := output.New()

	w.HelpTitle("automark grade - grade every submission in a folder")

	w.HelpSection("Usage:")
	w.HelpUsage("automark grade <spec> <folder> [options]")

	w.HelpSection("Options:")
	w.HelpFlag("-r, --recursive", "Search subfolders too", widthOption)
	w.HelpFlag("--no-recursive", "Ignore recursive: true from the config", widthOption)
	w.HelpFlag("--prefix=<prefix>", "Delimiter line prefix (default ###)", widthOption)
	w.HelpFlag("--comparison=<mode>", "Whitespace handling: trailing or all", widthOption)
	w.HelpFlag("--max-width=<n>", "Report width, 0 for unlimited", widthOption)
	w.HelpFlag("-o, --output=<file>", "Write the report to a file (.gz, .zst)", widthOption)
	w.HelpFlag("--upload[=<key>]", "Also upload the report to object storage", widthOption)
	w.HelpFlag("-h, --help", "Show this help", widthOption)

	w.HelpSection("Examples:")
	w.HelpExample("automark grade tests.txt subs/", "Print the report")
	w.HelpExample("automark grade tests.txt subs/ -o week3.txt.zst", "Save a compressed report")
	w.HelpExample("automark grade tests.txt subs/ --upload=week3.txt", "Upload the report")
	w.Println("")
}

func printCheckUsage() {
	w := output.New()

	w.HelpTitle("automark check - list the test cases of a specification")

	w.HelpSection("Usage:")
	w.HelpUsage("automark check <spec> [--prefix=<prefix>]")

	w.HelpSection("Options:")
	w.HelpFlag("--prefix=<prefix>", "Delimiter line prefix (default ###)", widthOption)
	w.HelpFlag("-h, --help", "Show this help", widthOption)
	w.Println("")
}

func printListUsage() {
	w := output.New()

	w.HelpTitle("automark list - list submissions in a folder")

	w.HelpSection("Usage:")
	w.HelpUsage("automark list <folder> [-r | --no-recursive]")

	w.HelpSection("Options:")
	w.HelpFlag("-r, --recursive", "Search subfolders too", widthOption)
	w.HelpFlag("--no-recursive", "Ignore recursive: true from the config", widthOption)
	w.HelpFlag("-h, --help", "Show this help", widthOption)
	w.Println("")
}

func printRunUsage() {
	w := output.New()

	w.HelpTitle("automark run - run one submission against a specification")

	w.HelpSection("Usage:")
	w.HelpUsage("automark run <submission> <spec> [options]")

	w.HelpSection("Options:")
	w.HelpFlag("--case=<n>", "Run only test case n", widthOption)
	w.HelpFlag("--prefix=<prefix>", "Delimiter line prefix (default ###)", widthOption)
	w.HelpFlag("-h, --help", "Show this help", widthOption)

	w.HelpSection("Examples:")
	w.HelpExample("automark run subs/alice.py tests.txt", "Run every case")
	w.HelpExample("automark run subs/alice.py tests.txt --case=3", "Run the third case only")
	w.Println("")
}

func printConfigUsage() {
	w := output.New()

	w.HelpTitle("automark config - configuration utilities")

	w.HelpSection("Usage:")
	w.HelpUsage("automark config <subcommand>")

	w.HelpSection("Subcommands:")
	w.HelpCommand("validate", "Validate the configuration", 10)

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", 10)

	w.HelpSection("Examples:")
	w.HelpExample("automark config validate", "Validate automark.yaml")
	w.Println("")
}
