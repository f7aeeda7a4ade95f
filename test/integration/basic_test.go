// Package integration contains integration tests for automark.
package integration

import (
	"context"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/AndreyAkinshin/automark/internal/discover"
	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/grader"
	"github.com/AndreyAkinshin/automark/internal/project"
	"github.com/AndreyAkinshin/automark/internal/session"
	"github.com/AndreyAkinshin/automark/internal/testspec"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
// The result is cached since runtime.Caller is relatively expensive.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// gradeFixture runs the whole pipeline on the sum fixture.
func gradeFixture(t *testing.T, recursive bool) (*grader.Report, string) {
	t.Helper()
	dir := filepath.Join(fixturesDir(), "sum")

	proj, err := project.LoadProjectFrom(dir)
	if err != nil {
		t.Fatalf("failed to load sum project: %v", err)
	}
	registry, err := proj.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	opts, err := proj.GraderOptions()
	if err != nil {
		t.Fatalf("GraderOptions() error = %v", err)
	}

	cases, err := testspec.LoadFile(filepath.Join(dir, "spec.txt"), proj.Config.Prefix)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	folder := filepath.Join(dir, "subs")
	paths, err := discover.Find(folder, recursive, registry.Extensions())
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	subs, errs := discover.Load(folder, paths, registry)
	if len(errs) > 0 {
		t.Fatalf("Load() errors = %v", errs)
	}

	report, err := grader.New(engine.NewExecutor(registry), opts).Generate(context.Background(), subs, cases)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text, err := report.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return report, text
}

func TestSumProject_Config(t *testing.T) {
	t.Parallel()
	proj, err := project.LoadProjectFrom(filepath.Join(fixturesDir(), "sum"))
	if err != nil {
		t.Fatalf("failed to load sum project: %v", err)
	}
	if proj.Config.Prefix != "###" {
		t.Errorf("Prefix = %q, want %q", proj.Config.Prefix, "###")
	}
	opts, err := proj.GraderOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxWidth != 72 {
		t.Errorf("MaxWidth = %d, want 72", opts.MaxWidth)
	}
	registry, err := proj.Registry()
	if err != nil {
		t.Fatal(err)
	}
	if got := registry.Names(); !reflect.DeepEqual(got, []string{"lua"}) {
		t.Errorf("Names() = %v, want [lua]", got)
	}
	if len(proj.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", proj.Warnings)
	}
}

func TestSumProject_Grade(t *testing.T) {
	t.Parallel()
	report, text := gradeFixture(t, false)

	if report.Total() != 2 || report.Perfect != 1 {
		t.Errorf("Total/Perfect = %d/%d, want 2/1", report.Total(), report.Perfect)
	}
	if len(report.Details) != 1 || report.Details[0].SubmissionID != "bob.lua" {
		t.Fatalf("Details = %+v, want only bob.lua", report.Details)
	}
	if !strings.Contains(text, "\nbob.lua\n") {
		t.Errorf("report has no bob.lua detail block:\n%s", text)
	}
	if strings.Contains(text, "\nalice.lua\n") {
		t.Errorf("report has a detail block for a perfect submission:\n%s", text)
	}
	if !strings.Contains(text, "-10") {
		t.Errorf("report does not show bob's actual output:\n%s", text)
	}
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > 72 {
			t.Errorf("line width %d exceeds 72: %q", w, line)
		}
	}
}

func TestSumProject_Recursive(t *testing.T) {
	t.Parallel()
	report, _ := gradeFixture(t, true)

	var ids []string
	for _, r := range report.Results {
		ids = append(ids, r.Submission.ID)
	}
	want := []string{"alice.lua", "bob.lua", "carol/main.lua"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("submission ids = %v, want %v", ids, want)
	}
	if report.Perfect != 2 {
		t.Errorf("Perfect = %d, want 2", report.Perfect)
	}
}

func TestCRLFSpecMatchesLF(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(fixturesDir(), "sum")

	lf, err := testspec.LoadFile(filepath.Join(dir, "spec.txt"), "###")
	if err != nil {
		t.Fatal(err)
	}
	crlf, err := testspec.LoadFile(filepath.Join(dir, "spec_crlf.txt"), "###")
	if err != nil {
		t.Fatal(err)
	}
	if len(crlf) != 1 {
		t.Fatalf("len(crlf) = %d, want 1", len(crlf))
	}
	if crlf[0] != lf[0] {
		t.Errorf("CRLF case = %+v, want %+v", crlf[0], lf[0])
	}
}

func TestSessionMatchesBatch(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(fixturesDir(), "sum")
	_, batch := gradeFixture(t, false)

	proj, err := project.LoadProjectFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	registry, err := proj.Registry()
	if err != nil {
		t.Fatal(err)
	}
	opts, err := proj.GraderOptions()
	if err != nil {
		t.Fatal(err)
	}

	s := session.New(registry, opts, proj.Config.Prefix)
	if err := s.LoadSpec(filepath.Join(dir, "spec.txt")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFolder(filepath.Join(dir, "subs")); err != nil {
		t.Fatal(err)
	}
	report, err := s.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	text, err := report.Render()
	if err != nil {
		t.Fatal(err)
	}
	if text != batch {
		t.Errorf("session report differs from batch report:\n%s\n---\n%s", text, batch)
	}
}
