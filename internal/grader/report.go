package grader

import (
	"strings"

	"github.com/AndreyAkinshin/automark/internal/model"
	"github.com/AndreyAkinshin/automark/internal/table"
)

// Detail is the failure table of one submission.
type Detail struct {
	SubmissionID string
	Table        *table.Table
}

// Report is the outcome of grading a batch of submissions.
type Report struct {
	Cases   int
	Results []model.SubmissionResult
	Perfect int // submissions that passed every case
	Summary *table.Table
	Details []Detail // in submission order, only for submissions with failures
}

// Total returns the number of graded submissions.
func (r *Report) Total() int {
	return len(r.Results)
}

// Render lays out the report: the summary table, then for each submission
// with failures its identifier on a line of its own followed by its detail
// table. Blocks are separated by blank lines.
func (r *Report) Render() (string, error) {
	var b strings.Builder

	summary, err := r.Summary.Render()
	if err != nil {
		return "", err
	}
	b.WriteString(summary)
	b.WriteString("\n\n")

	for _, d := range r.Details {
		detail, err := d.Table.Render()
		if err != nil {
			return "", err
		}
		b.WriteString(d.SubmissionID)
		b.WriteString("\n")
		b.WriteString(detail)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// Detail returns the failure table for a submission, if it has one.
func (r *Report) Detail(id string) (*table.Table, bool) {
	for _, d := range r.Details {
		if d.SubmissionID == id {
			return d.Table, true
		}
	}
	return nil, false
}
