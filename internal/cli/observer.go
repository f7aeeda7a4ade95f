package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/AndreyAkinshin/automark/internal/logging"
	"github.com/AndreyAkinshin/automark/internal/model"
)

// logObserver reports grading progress to the debug log.
type logObserver struct {
	ctx context.Context
}

func newLogObserver(ctx context.Context) *logObserver {
	return &logObserver{ctx: ctx}
}

func (o *logObserver) SubmissionStarted(sub model.Submission, cases int) {
	logging.Debug(o.ctx, "submission started",
		zap.String("submission", sub.ID),
		zap.String("language", sub.Language),
		zap.Int("cases", cases))
}

func (o *logObserver) CaseFinished(r model.TestResult) {
	fields := []zap.Field{
		zap.String("submission", r.SubmissionID),
		zap.Int("case", r.Index),
		zap.Bool("success", r.Success),
		zap.Duration("duration", r.Duration),
	}
	if r.Fault != nil {
		logging.Debug(o.ctx, "case fault", append(fields, zap.Error(r.Fault))...)
		return
	}
	logging.Debug(o.ctx, "case finished", fields...)
}

func (o *logObserver) SubmissionFinished(res model.SubmissionResult) {
	logging.Debug(o.ctx, "submission finished",
		zap.String("submission", res.Submission.ID),
		zap.Int("score", res.Score),
		zap.Int("cases", len(res.Results)))
}
