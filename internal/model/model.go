// Package model provides the data types shared by the parser, the execution
// engines, and the grader.
// This package exists so that engine and grader can exchange submissions
// and results without importing each other.
package model

import "time"

// TestCase is one input/expected-output pair extracted from a test
// specification. Both fields hold the raw text between delimiters.
type TestCase struct {
	Input    string
	Expected string
}

// Submission is one candidate program to be graded.
type Submission struct {
	ID       string // row label in reports, usually the discovered path
	Path     string
	Language string
	Source   string
}

// TestResult is the outcome of running one submission against one test case.
// Actual always holds text: the captured output, or the fault description
// when the run failed.
type TestResult struct {
	SubmissionID string
	Index        int // 1-based position of the case
	Case         TestCase
	Success      bool
	Actual       string
	Fault        error
	Duration     time.Duration
}

// Failed reports whether the result counts against the submission.
func (r TestResult) Failed() bool {
	return !r.Success
}

// SubmissionResult groups the results of one submission in case order.
type SubmissionResult struct {
	Submission Submission
	Results    []TestResult
	Score      int
}

// Perfect reports whether every case passed.
func (s SubmissionResult) Perfect() bool {
	return s.Score == len(s.Results)
}

// Failures returns the failed results in case order.
func (s SubmissionResult) Failures() []TestResult {
	var failed []TestResult
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}
