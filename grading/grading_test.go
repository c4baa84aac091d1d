package grading_test

import (
	"testing"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/grading"
)

type resolveTest struct {
	Outcome   grading.Outcome
	AllPassed bool
	Expected  codebench.Status
}

var resolveExamples = map[string]resolveTest{
	"completed all passed":  {grading.Outcome{Kind: grading.OutcomeCompleted}, true, codebench.StatusSuccess},
	"completed some failed": {grading.Outcome{Kind: grading.OutcomeCompleted}, false, codebench.StatusFailure},
	"build error":           {grading.Outcome{Kind: grading.OutcomeExecutorError, Stage: grading.StageBuild}, false, codebench.StatusBuildError},
	"run error":             {grading.Outcome{Kind: grading.OutcomeExecutorError, Stage: grading.StageRun}, false, codebench.StatusRuntimeError},
	// Timeout precedence is absolute: even a full pass cannot rescue it.
	"timeout beats passing": {grading.Outcome{Kind: grading.OutcomeTimedOut}, true, codebench.StatusTimeOut},
	"timeout beats failing": {grading.Outcome{Kind: grading.OutcomeTimedOut}, false, codebench.StatusTimeOut},
	"error beats passing":   {grading.Outcome{Kind: grading.OutcomeExecutorError, Stage: grading.StageRun}, false, codebench.StatusRuntimeError},
}

func TestResolve(t *testing.T) {
	for k, v := range resolveExamples {
		k, v := k, v
		t.Run(k, func(t *testing.T) {
			t.Parallel()
			if got := grading.Resolve(v.Outcome, v.AllPassed); got != v.Expected {
				t.Errorf("Resolve(%+v, %v) = %s, expected %s", v.Outcome, v.AllPassed, got, v.Expected)
			}
		})
	}
}

func ioTests(outputs ...string) []*codebench.IOTest {
	tests := make([]*codebench.IOTest, 0, len(outputs))
	for i, out := range outputs {
		tests = append(tests, &codebench.IOTest{ID: i + 1, Name: "t", Output: out})
	}
	return tests
}

func TestAllIOPassed(t *testing.T) {
	t.Run("all match", func(t *testing.T) {
		if !grading.AllIOPassed(ioTests("a\n", "b\n", "c\n"), []string{"a\n", "b\n", "c\n"}) {
			t.Error("expected pass")
		}
	})
	t.Run("one mismatch", func(t *testing.T) {
		if grading.AllIOPassed(ioTests("a\n", "b\n"), []string{"a\n", "x\n"}) {
			t.Error("expected failure")
		}
	})
	t.Run("no normalization", func(t *testing.T) {
		// Trailing whitespace counts: match is byte exact.
		if grading.AllIOPassed(ioTests("a"), []string{"a\n"}) {
			t.Error("expected failure on trailing newline")
		}
	})
	t.Run("length mismatch with matching prefix", func(t *testing.T) {
		if grading.AllIOPassed(ioTests("a", "b", "c"), []string{"a", "b"}) {
			t.Error("missing output must fail even if the prefix matches")
		}
	})
	t.Run("extra outputs", func(t *testing.T) {
		if grading.AllIOPassed(ioTests("a"), []string{"a", "b"}) {
			t.Error("extra outputs must fail")
		}
	})
	t.Run("empty", func(t *testing.T) {
		if !grading.AllIOPassed(nil, nil) {
			t.Error("no tests means vacuous pass")
		}
	})
}

func TestZipIORuns(t *testing.T) {
	tests := ioTests("1\n", "2\n", "3\n")
	tests[0].Name, tests[1].Name, tests[2].Name = "first", "second", "third"
	runs := grading.ZipIORuns(tests, []string{"1\n", "9\n"})

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "first" || runs[1].Name != "second" {
		t.Errorf("runs out of order: %q, %q", runs[0].Name, runs[1].Name)
	}
	if !runs[0].Passed() {
		t.Error("first run should pass")
	}
	if runs[1].Passed() {
		t.Error("second run should fail")
	}
	if runs[1].Expected != "2\n" || runs[1].Output != "9\n" {
		t.Errorf("second run recorded %q/%q", runs[1].Expected, runs[1].Output)
	}
}

func TestAllUnitPassed(t *testing.T) {
	if grading.AllUnitPassed(nil) {
		t.Error("nil summary must not pass")
	}
	if !grading.AllUnitPassed(&codebench.UnitSuiteSummary{}) {
		t.Error("zero counts must pass")
	}
	if grading.AllUnitPassed(&codebench.UnitSuiteSummary{FailedCount: 1}) {
		t.Error("failed count must veto")
	}
	if grading.AllUnitPassed(&codebench.UnitSuiteSummary{ErroredCount: 1}) {
		t.Error("errored count must veto")
	}

	// Counts win over entries: inconsistent summaries are the runner's
	// responsibility, the verdict still follows the aggregates.
	sum := &codebench.UnitSuiteSummary{
		Tests:       []codebench.UnitTestResult{{Name: "a", Status: codebench.UnitTestStatusPassed}},
		FailedCount: 1,
	}
	if grading.AllUnitPassed(sum) {
		t.Error("aggregate counts are authoritative")
	}
}

func TestUnitRuns(t *testing.T) {
	sum := &codebench.UnitSuiteSummary{
		Tests: []codebench.UnitTestResult{
			{Name: "test_add", Status: codebench.UnitTestStatusPassed},
			{Name: "test_sub", Status: "FAILED", Message: "expected 2, got 3"},
			{Name: "test_mul", Status: "ERRORED"},
		},
		FailedCount:  1,
		ErroredCount: 1,
	}
	runs := grading.UnitRuns(sum)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[0].Passed || runs[1].Passed || runs[2].Passed {
		t.Errorf("passed flags wrong: %v %v %v", runs[0].Passed, runs[1].Passed, runs[2].Passed)
	}
	if runs[2].Message != "" {
		t.Errorf("missing message should be empty, got %q", runs[2].Message)
	}
	if runs[1].Message != "expected 2, got 3" {
		t.Errorf("message not carried over: %q", runs[1].Message)
	}
}
