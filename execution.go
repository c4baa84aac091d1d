package codebench

import "time"

// ExecutionLog records the outcome of one test-execution cycle for one
// submission. Logs are append-only: a new cycle gets a new log.
type ExecutionLog struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubmissionID int `json:"submission_id"`

	Success     bool   `json:"success"`
	ExitMessage string `json:"exit_message"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
}

// IOTestRun is the recorded result of one IO test case in a cycle. The
// expected output is denormalized onto the run so the log stays meaningful
// if the test definition is edited later.
type IOTestRun struct {
	ID    int `json:"id"`
	LogID int `json:"log_id"`

	Name     string `json:"name"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Output   string `json:"output"`
}

// Passed reports byte-exact equality, no normalization whatsoever.
func (r *IOTestRun) Passed() bool {
	return r.Output == r.Expected
}

// UnitTestRun is one unit test reported by the suite's runner.
type UnitTestRun struct {
	ID    int `json:"id"`
	LogID int `json:"log_id"`

	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// UnitTestStatusPassed is the runner's wire value for a passing unit test.
const UnitTestStatusPassed = "PASSED"

// UnitTestResult is a single entry of a suite runner's summary.
type UnitTestResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UnitSuiteSummary is what the external runner reports for a unit-tested
// cycle. The aggregate counts are the runner's own; the verdict is computed
// from them, not recomputed from the per-test entries.
type UnitSuiteSummary struct {
	Tests        []UnitTestResult `json:"tests"`
	FailedCount  int              `json:"failed_count"`
	ErroredCount int              `json:"errored_count"`
}
