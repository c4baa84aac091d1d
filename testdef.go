package codebench

import "time"

// IOTest is a literal input/expected-output pair owned by an activity.
// Order among an activity's IO tests is significant: runs are dispatched and
// reported positionally, so stores must always return them in id order.
type IOTest struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActivityID int    `json:"activity_id"`
	Name       string `json:"name"`
	Input      string `json:"input"`
	Output     string `json:"output"`
}

type IOTestUpdate struct {
	Name   *string
	Input  *string
	Output *string
}

// UnitTestSuite is the instructor-supplied test program for an activity,
// stored as a packed archive. At most one per activity.
type UnitTestSuite struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ActivityID int    `json:"activity_id"`
	ArchiveKey string `json:"archive_key"`
}
