package codebench

import (
	"time"

	"github.com/shopspring/decimal"
)

// TestingMode says how an activity's submissions are graded. It is derived
// from the test definitions the activity owns, never stored on submissions.
type TestingMode string

const (
	// ModeIO: the program is run against ordered input/expected-output pairs.
	ModeIO TestingMode = "io"
	// ModeUnit: an instructor-supplied test suite is run against the code.
	ModeUnit TestingMode = "unit"
	// ModeUntested: nothing to check, execution alone decides the verdict.
	ModeUntested TestingMode = "untested"
)

// Activity is a programming exercise definition. This core consumes it
// read-only; authoring lives in the courses service.
type Activity struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name   string          `json:"name"`
	Points decimal.Decimal `json:"points"`

	// Language carries the version, e.g. "python3.11", and is forwarded
	// verbatim in the dispatch message.
	Language string `json:"language"`

	// StartingFilesKey references the instructor's starting archive.
	StartingFilesKey string `json:"starting_files_key,omitempty"`
}
