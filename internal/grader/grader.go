// Package grader runs every submission against every test case and
// aggregates the verdicts into summary and failure-detail tables.
//
// The grader performs no discovery or file I/O: it receives loaded
// submissions and parsed cases, and hands back a Report.
package grader

import (
	"context"
	"time"

	"github.com/AndreyAkinshin/automark/internal/engine"
	"github.com/AndreyAkinshin/automark/internal/model"
	"github.com/AndreyAkinshin/automark/internal/table"
)

// Preparer loads submissions into runnable programs. *engine.Executor
// implements it.
type Preparer interface {
	Prepare(sub model.Submission) (engine.Program, error)
}

// Observer is notified as grading progresses. Any method may be a no-op.
type Observer interface {
	SubmissionStarted(sub model.Submission, cases int)
	CaseFinished(result model.TestResult)
	SubmissionFinished(result model.SubmissionResult)
}

// Options configure grading and table layout.
type Options struct {
	Comparison Comparison
	MaxWidth   int // total table width, 0 for unlimited
	Precision  int
	Observer   Observer
}

// DefaultOptions returns the default grading options.
func DefaultOptions() Options {
	return Options{
		Comparison: DefaultComparison,
		MaxWidth:   table.DefaultMaxWidth,
		Precision:  table.DefaultPrecision,
	}
}

// Grader drives the executor across submissions and cases.
type Grader struct {
	preparer Preparer
	opts     Options
}

// New returns a grader.
func New(preparer Preparer, opts Options) *Grader {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Grader{preparer: preparer, opts: opts}
}

// Grade runs one submission against every case in order. Faults are
// recorded as failed results whose actual output is the fault description;
// a submission that fails to load fails every case with the load fault.
func (g *Grader) Grade(ctx context.Context, sub model.Submission, cases []model.TestCase) model.SubmissionResult {
	g.opts.Observer.SubmissionStarted(sub, len(cases))
	res := model.SubmissionResult{
		Submission: sub,
		Results:    make([]model.TestResult, 0, len(cases)),
	}

	prog, loadErr := g.preparer.Prepare(sub)
	if loadErr == nil {
		defer prog.Close()
	}

	for i, tc := range cases {
		result := model.TestResult{
			SubmissionID: sub.ID,
			Index:        i + 1,
			Case:         tc,
		}
		if loadErr != nil {
			result.Fault = loadErr
			result.Actual = faultText(loadErr)
		} else {
			start := time.Now()
			out, err := prog.Run(ctx, tc.Input)
			result.Duration = time.Since(start)
			if err != nil {
				result.Fault = err
				result.Actual = faultText(err)
			} else {
				result.Actual = out
				result.Success = g.opts.Comparison.Match(out, tc.Expected)
			}
		}
		if result.Success {
			res.Score++
		}
		res.Results = append(res.Results, result)
		g.opts.Observer.CaseFinished(result)
	}

	g.opts.Observer.SubmissionFinished(res)
	return res
}

func faultText(err error) string {
	if f, ok := engine.AsFault(err); ok {
		return f.Message
	}
	return err.Error()
}

// Generate grades every submission in order and builds the report tables.
// It stops early only when ctx is cancelled between submissions.
func (g *Grader) Generate(ctx context.Context, subs []model.Submission, cases []model.TestCase) (*Report, error) {
	report := &Report{Cases: len(cases)}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := g.Grade(ctx, sub, cases)
		report.Results = append(report.Results, res)
		if res.Perfect() {
			report.Perfect++
		}
	}

	summary, err := g.summaryTable(report.Results, len(cases))
	if err != nil {
		return nil, err
	}
	report.Summary = summary

	for _, res := range report.Results {
		failures := res.Failures()
		if len(failures) == 0 {
			continue
		}
		detail, err := g.detailTable(failures)
		if err != nil {
			return nil, err
		}
		report.Details = append(report.Details, Detail{SubmissionID: res.Submission.ID, Table: detail})
	}
	return report, nil
}

func (g *Grader) newTable() (*table.Table, error) {
	t := table.New()
	if err := t.SetMaxWidth(g.opts.MaxWidth); err != nil {
		return nil, err
	}
	if err := t.SetPrecision(g.opts.Precision); err != nil {
		return nil, err
	}
	return t, nil
}

// SummaryHeader returns the summary header for n cases:
// "Submission", 1..n, "Score".
func SummaryHeader(n int) []any {
	header := make([]any, 0, n+2)
	header = append(header, "Submission")
	for i := 1; i <= n; i++ {
		header = append(header, i)
	}
	return append(header, "Score")
}

// DetailHeader is the header of every failure-detail table.
var DetailHeader = []any{"Failed Test Case", "Input", "Expected Output", "Actual Output"}

func (g *Grader) summaryTable(results []model.SubmissionResult, n int) (*table.Table, error) {
	t, err := g.newTable()
	if err != nil {
		return nil, err
	}
	if err := t.Header(SummaryHeader(n)...); err != nil {
		return nil, err
	}
	dtypes := make([]table.DType, n+2)
	dtypes[0] = table.Text
	if err := t.SetColsDType(dtypes...); err != nil {
		return nil, err
	}
	for _, res := range results {
		row := make([]any, 0, n+2)
		row = append(row, res.Submission.ID)
		for _, r := range res.Results {
			if r.Success {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		row = append(row, res.Score)
		if err := t.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (g *Grader) detailTable(failures []model.TestResult) (*table.Table, error) {
	t, err := g.newTable()
	if err != nil {
		return nil, err
	}
	if err := t.Header(DetailHeader...); err != nil {
		return nil, err
	}
	if err := t.SetColsDType(table.Auto, table.Text, table.Text, table.Text); err != nil {
		return nil, err
	}
	for _, r := range failures {
		if err := t.AddRow(r.Index, r.Case.Input, r.Case.Expected, r.Actual); err != nil {
			return nil, err
		}
	}
	return t, nil
}

type nopObserver struct{}

func (nopObserver) SubmissionStarted(model.Submission, int)   {}
func (nopObserver) CaseFinished(model.TestResult)             {}
func (nopObserver) SubmissionFinished(model.SubmissionResult) {}
