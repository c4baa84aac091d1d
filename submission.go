package codebench

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a submission. The values are the exact
// strings the execution queue and API clients see.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusEnqueued     Status = "ENQUEUED"
	StatusProcessing   Status = "PROCESSING"
	StatusBuildError   Status = "BUILD_ERROR"
	StatusRuntimeError Status = "RUNTIME_ERROR"
	StatusFailure      Status = "FAILURE"
	StatusSuccess      Status = "SUCCESS"
	StatusTimeOut      Status = "TIME_OUT"
)

// statusRank is the explicit "best status" ordering used by statistics.
// It intentionally mirrors the wire enum sequence above instead of being
// derived from it, so reordering declarations can never change rankings.
// Note that TIME_OUT outranks SUCCESS: the sequence is inherited from the
// platform's wire contract and clients already depend on it.
var statusRank = map[Status]int{
	StatusPending:      0,
	StatusEnqueued:     1,
	StatusProcessing:   2,
	StatusBuildError:   3,
	StatusRuntimeError: 4,
	StatusFailure:      5,
	StatusSuccess:      6,
	StatusTimeOut:      7,
}

// Rank returns the position of the status in the "best status" order.
// Unknown statuses rank below everything.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether the status is the result of a finished execution
// cycle. A terminal submission does not accept further execution reports.
func (s Status) Terminal() bool {
	switch s {
	case StatusBuildError, StatusRuntimeError, StatusFailure, StatusSuccess, StatusTimeOut:
		return true
	}
	return false
}

// BetterStatus returns the higher-ranked of the two statuses.
func BetterStatus(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Submission is one student's attempt at one activity. The solution files
// themselves live in the datastore, referenced by ArchiveKey.
type Submission struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ActivityID int    `json:"activity_id"`
	UserID     int    `json:"user_id"`
	ArchiveKey string `json:"archive_key,omitempty"`

	Status Status `json:"status"`

	// IsFinal marks the submission the student designated as their graded
	// attempt. At most one submission per (activity, user) carries it.
	IsFinal bool `json:"is_final"`
}

type SubmissionFilter struct {
	ID  *int  `json:"id"`
	IDs []int `json:"ids"`

	UserID  *int  `json:"user_id"`
	UserIDs []int `json:"user_ids"`

	ActivityID *int `json:"activity_id"`
	// ActivityIDs non-nil but empty matches nothing, not everything.
	ActivityIDs []int `json:"activity_ids"`

	Status  Status `json:"status"`
	IsFinal *bool  `json:"is_final"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`

	Ordering  string `json:"ordering"`
	Ascending bool   `json:"ascending"`
}

type SubmissionUpdate struct {
	Status  Status
	IsFinal *bool
}

// Scan implements the sql.Scanner interface
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*s = Status(v)
	case string:
		*s = Status(v)
	default:
		return fmt.Errorf("unsupported scan type for Status: %T", src)
	}
	return nil
}
