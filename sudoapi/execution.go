package sudoapi

import (
	"context"
	"log/slog"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/grading"
)

// ExecutionReport is what the external executor delivers after a cycle.
// Exactly one of IOOutputs / UnitSummary is meaningful, matching the
// activity's testing mode; the other stays empty.
type ExecutionReport struct {
	Outcome grading.Outcome `json:"outcome"`

	ExitMessage string `json:"exit_message"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`

	IOOutputs   []string                    `json:"io_outputs,omitempty"`
	UnitSummary *codebench.UnitSuiteSummary `json:"unit_summary,omitempty"`
}

// RecordExecution is the single entry point for execution results: it
// persists the log and the per-test runs, resolves the next status through
// grading.Resolve and applies it. Nothing else in the service layer writes a
// post-execution status.
//
// A report for a submission already in a terminal status is rejected with a
// conflict: the executor must not double-deliver, and silently taking the
// latest would mask that bug.
func (s *BaseAPI) RecordExecution(ctx context.Context, subID int, report *ExecutionReport) (*codebench.ExecutionLog, *StatusError) {
	sub, serr := s.Submission(ctx, subID)
	if serr != nil {
		return nil, serr
	}
	if sub.Status.Terminal() {
		return nil, Statusf(409, "Submission already has a recorded verdict")
	}

	mode, serr := s.ActivityTestingMode(ctx, sub.ActivityID)
	if serr != nil {
		return nil, serr
	}

	allPassed := false
	var ioRuns []*codebench.IOTestRun
	var unitRuns []*codebench.UnitTestRun

	switch mode {
	case codebench.ModeIO:
		tests, err := s.db.IOTests(ctx, sub.ActivityID)
		if err != nil {
			slog.WarnContext(ctx, "Couldn't fetch IO tests", slog.Any("err", err))
			return nil, ErrUnknownError
		}
		allPassed = grading.AllIOPassed(tests, report.IOOutputs)
		ioRuns = grading.ZipIORuns(tests, report.IOOutputs)
	case codebench.ModeUnit:
		allPassed = grading.AllUnitPassed(report.UnitSummary)
		unitRuns = grading.UnitRuns(report.UnitSummary)
	case codebench.ModeUntested:
		// Nothing to check: completion alone is the verdict.
		allPassed = true
	}

	next := grading.Resolve(report.Outcome, allPassed)

	log := &codebench.ExecutionLog{
		SubmissionID: sub.ID,
		Success:      next == codebench.StatusSuccess,
		ExitMessage:  report.ExitMessage,
		Stdout:       report.Stdout,
		Stderr:       report.Stderr,
	}
	if err := s.db.CreateExecutionLog(ctx, log); err != nil {
		slog.WarnContext(ctx, "Couldn't record execution log", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	if len(ioRuns) > 0 {
		if err := s.db.CreateIOTestRuns(ctx, log.ID, ioRuns); err != nil {
			slog.WarnContext(ctx, "Couldn't record IO test runs", slog.Any("err", err))
			return nil, ErrUnknownError
		}
	}
	if len(unitRuns) > 0 {
		if err := s.db.CreateUnitTestRuns(ctx, log.ID, unitRuns); err != nil {
			slog.WarnContext(ctx, "Couldn't record unit test runs", slog.Any("err", err))
			return nil, ErrUnknownError
		}
	}

	if err := s.db.UpdateSubmission(ctx, sub.ID, codebench.SubmissionUpdate{Status: next}); err != nil {
		slog.WarnContext(ctx, "Couldn't apply resolved status", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	slog.InfoContext(ctx, "Recorded execution cycle",
		slog.Int("submission", sub.ID),
		slog.String("status", string(next)),
		slog.Bool("all_passed", allPassed))
	return log, nil
}

// ExecutionLogs returns the full history of cycles for a submission, oldest
// first, with their per-test runs attached by the caller if needed.
func (s *BaseAPI) ExecutionLogs(ctx context.Context, subID int) ([]*codebench.ExecutionLog, *StatusError) {
	if _, serr := s.Submission(ctx, subID); serr != nil {
		return nil, serr
	}
	logs, err := s.db.ExecutionLogsBySubmission(ctx, subID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch execution logs", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return logs, nil
}

func (s *BaseAPI) IOTestRuns(ctx context.Context, logID int) ([]*codebench.IOTestRun, *StatusError) {
	runs, err := s.db.IOTestRuns(ctx, logID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch IO test runs", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return runs, nil
}

func (s *BaseAPI) UnitTestRuns(ctx context.Context, logID int) ([]*codebench.UnitTestRun, *StatusError) {
	runs, err := s.db.UnitTestRuns(ctx, logID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch unit test runs", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return runs, nil
}
