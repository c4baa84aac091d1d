// Package grading holds the pure verdict logic: given what the external
// executor reported, decide the submission's next status. Nothing here
// touches storage.
package grading

import "github.com/codebench-edu/codebench"

// OutcomeKind is the coarse result the executor reports for a cycle.
type OutcomeKind string

const (
	// OutcomeCompleted: the program was built and ran to completion;
	// whether it is correct is decided by the test results.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeTimedOut: the executor killed the run. Timeout detection
	// happens out of process; this core never measures time itself.
	OutcomeTimedOut OutcomeKind = "timed_out"
	// OutcomeExecutorError: the executor failed at some stage.
	OutcomeExecutorError OutcomeKind = "executor_error"
)

// Stage is where an executor error occurred.
type Stage string

const (
	StageBuild Stage = "build"
	StageRun   Stage = "run"
)

// Outcome is the executor's report of how a cycle went, minus test details.
type Outcome struct {
	Kind  OutcomeKind `json:"kind"`
	Stage Stage       `json:"stage,omitempty"`
}

// Resolve maps an execution outcome to the submission's next status. It is
// the sole authority for post-execution transitions; every production status
// write after a cycle goes through it, exactly once per recorded log.
//
// Check order matters: a timeout or executor error short-circuits regardless
// of any partial test results.
func Resolve(outcome Outcome, allTestsPassed bool) codebench.Status {
	switch outcome.Kind {
	case OutcomeTimedOut:
		return codebench.StatusTimeOut
	case OutcomeExecutorError:
		if outcome.Stage == StageBuild {
			return codebench.StatusBuildError
		}
		return codebench.StatusRuntimeError
	}
	if allTestsPassed {
		return codebench.StatusSuccess
	}
	return codebench.StatusFailure
}

// AllIOPassed zips the activity's IO tests against the student outputs
// positionally and reports whether every test both ran and matched. Identity
// is purely positional: outputs come back in dispatch order, names play no
// part. A length mismatch means not every test executed, which counts as
// failure even if the overlapping prefix matches.
func AllIOPassed(tests []*codebench.IOTest, outputs []string) bool {
	if len(tests) != len(outputs) {
		return false
	}
	for i := range tests {
		if outputs[i] != tests[i].Output {
			return false
		}
	}
	return true
}

// AllUnitPassed trusts the runner's aggregate counts. They are not
// cross-checked against the per-test entries: a summary that disagrees with
// itself is the executor's bug to fix, not ours to paper over.
func AllUnitPassed(summary *codebench.UnitSuiteSummary) bool {
	if summary == nil {
		return false
	}
	return summary.FailedCount == 0 && summary.ErroredCount == 0
}

// ZipIORuns builds the persisted run records for a cycle, pairing tests and
// outputs by index. Extra outputs are dropped; missing ones produce no run
// record (the log's verdict already reflects the mismatch via AllIOPassed).
func ZipIORuns(tests []*codebench.IOTest, outputs []string) []*codebench.IOTestRun {
	n := min(len(tests), len(outputs))
	runs := make([]*codebench.IOTestRun, 0, n)
	for i := 0; i < n; i++ {
		runs = append(runs, &codebench.IOTestRun{
			Name:     tests[i].Name,
			Input:    tests[i].Input,
			Expected: tests[i].Output,
			Output:   outputs[i],
		})
	}
	return runs
}

// UnitRuns converts the runner's summary entries into persisted run records,
// in report order. A missing message becomes the empty string.
func UnitRuns(summary *codebench.UnitSuiteSummary) []*codebench.UnitTestRun {
	if summary == nil {
		return []*codebench.UnitTestRun{}
	}
	runs := make([]*codebench.UnitTestRun, 0, len(summary.Tests))
	for _, res := range summary.Tests {
		runs = append(runs, &codebench.UnitTestRun{
			Name:    res.Name,
			Passed:  res.Status == codebench.UnitTestStatusPassed,
			Message: res.Message,
		})
	}
	return runs
}
