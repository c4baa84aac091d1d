// Package stats folds submission sets into the summary numbers the platform
// shows teachers: per-student counters, course progress, grouped reports.
// Everything here is a pure fold over in-memory slices; fetching is the
// caller's job.
package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/shopspring/decimal"
)

// StudentSummary aggregates one student's submissions to some activity set.
type StudentSummary struct {
	Total        int `json:"total"`
	Success      int `json:"success"`
	RuntimeError int `json:"runtime_error"`
	BuildError   int `json:"build_error"`
	Failure      int `json:"failure"`

	// BestStatus is the highest-ranked status in the set, empty if none.
	BestStatus codebench.Status `json:"best_status,omitempty"`

	// LastSubmission is the newest created-at, zero if the set is empty.
	LastSubmission time.Time `json:"last_submission,omitzero"`
}

func PerStudent(subs []*codebench.Submission) StudentSummary {
	var sum StudentSummary
	for _, sub := range subs {
		sum.Total++
		switch sub.Status {
		case codebench.StatusSuccess:
			sum.Success++
		case codebench.StatusRuntimeError:
			sum.RuntimeError++
		case codebench.StatusBuildError:
			sum.BuildError++
		case codebench.StatusFailure:
			sum.Failure++
		}
		if sum.BestStatus == "" {
			sum.BestStatus = sub.Status
		} else {
			sum.BestStatus = codebench.BetterStatus(sum.BestStatus, sub.Status)
		}
		if sub.CreatedAt.After(sum.LastSubmission) {
			sum.LastSubmission = sub.CreatedAt
		}
	}
	return sum
}

// ProgressSummary classifies a student's standing across a set of activities.
type ProgressSummary struct {
	Started    int `json:"started"`
	NotStarted int `json:"not_started"`
	Solved     int `json:"solved"`

	PointsObtained decimal.Decimal `json:"points_obtained"`
	TotalPossible  decimal.Decimal `json:"total_possible"`
}

// ActivityProgress walks the activities and buckets each as not-started (no
// submissions), solved (at least one SUCCESS) or started (submissions, none
// successful). An activity's points are awarded exactly once no matter how
// many successful submissions exist.
func ActivityProgress(activities []*codebench.Activity, subsByActivity map[int][]*codebench.Submission) ProgressSummary {
	sum := ProgressSummary{
		PointsObtained: decimal.Zero,
		TotalPossible:  decimal.Zero,
	}
	for _, act := range activities {
		sum.TotalPossible = sum.TotalPossible.Add(act.Points)

		subs := subsByActivity[act.ID]
		if len(subs) == 0 {
			sum.NotStarted++
			continue
		}
		solved := false
		for _, sub := range subs {
			if sub.Status == codebench.StatusSuccess {
				solved = true
				break
			}
		}
		if solved {
			sum.Solved++
			sum.PointsObtained = sum.PointsObtained.Add(act.Points)
		} else {
			sum.Started++
		}
	}
	return sum
}

type GroupBy string

const (
	GroupByUser     GroupBy = "user"
	GroupByDate     GroupBy = "date"
	GroupByActivity GroupBy = "activity"
)

// GroupSummary is one bucket of a grouped report.
type GroupSummary struct {
	// Key identifies the bucket: the user id or activity id as a decimal
	// string, or the calendar date as "2006-01-02".
	Key string `json:"key"`

	Summary StudentSummary `json:"summary"`

	// Submitter counts are over distinct students within the bucket.
	Submitters             int `json:"submitters"`
	SuccessfulSubmitters   int `json:"successful_submitters"`
	UnsuccessfulSubmitters int `json:"unsuccessful_submitters"`

	// Averages are per submitter with at least one submission in the
	// bucket, not per roster entry. An empty bucket averages to 0.
	AvgSubmissions float64 `json:"avg_submissions"`
	AvgSuccesses   float64 `json:"avg_successes"`
	AvgErrors      float64 `json:"avg_errors"`
}

const dateLayout = "2006-01-02"

// Grouped partitions the submissions of (roster x activities), optionally
// narrowed to one calendar date (UTC), into buckets by the requested key and
// aggregates each bucket.
//
// With GroupByUser and GroupByActivity every roster entry, respectively
// every activity, yields a bucket even if it has no submissions; GroupByDate
// yields buckets only for dates that actually saw submissions, sorted
// ascending.
func Grouped(userIDs []int, activities []*codebench.Activity, subs []*codebench.Submission, date *time.Time, groupBy GroupBy) ([]*GroupSummary, error) {
	switch groupBy {
	case GroupByUser, GroupByDate, GroupByActivity:
	default:
		return nil, codebench.Statusf(400, "Unknown grouping %q", groupBy)
	}

	users := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}
	acts := make(map[int]bool, len(activities))
	for _, act := range activities {
		acts[act.ID] = true
	}

	eligible := make([]*codebench.Submission, 0, len(subs))
	for _, sub := range subs {
		if !users[sub.UserID] || !acts[sub.ActivityID] {
			continue
		}
		if date != nil && sub.CreatedAt.UTC().Format(dateLayout) != date.UTC().Format(dateLayout) {
			continue
		}
		eligible = append(eligible, sub)
	}

	buckets := make(map[string][]*codebench.Submission)
	var keys []string
	switch groupBy {
	case GroupByUser:
		for _, id := range userIDs {
			keys = append(keys, strconv.Itoa(id))
		}
		for _, sub := range eligible {
			k := strconv.Itoa(sub.UserID)
			buckets[k] = append(buckets[k], sub)
		}
	case GroupByActivity:
		for _, act := range activities {
			keys = append(keys, strconv.Itoa(act.ID))
		}
		for _, sub := range eligible {
			k := strconv.Itoa(sub.ActivityID)
			buckets[k] = append(buckets[k], sub)
		}
	case GroupByDate:
		for _, sub := range eligible {
			k := sub.CreatedAt.UTC().Format(dateLayout)
			if _, ok := buckets[k]; !ok {
				keys = append(keys, k)
			}
			buckets[k] = append(buckets[k], sub)
		}
		sort.Strings(keys)
	}

	out := make([]*GroupSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, aggregateBucket(k, buckets[k]))
	}
	return out, nil
}

func aggregateBucket(key string, subs []*codebench.Submission) *GroupSummary {
	g := &GroupSummary{
		Key:     key,
		Summary: PerStudent(subs),
	}

	perUser := make(map[int][]*codebench.Submission)
	for _, sub := range subs {
		perUser[sub.UserID] = append(perUser[sub.UserID], sub)
	}

	var totalSubs, totalSuccesses, totalErrors int
	for _, userSubs := range perUser {
		g.Submitters++
		succeeded := false
		for _, sub := range userSubs {
			totalSubs++
			switch sub.Status {
			case codebench.StatusSuccess:
				totalSuccesses++
				succeeded = true
			case codebench.StatusBuildError, codebench.StatusRuntimeError:
				totalErrors++
			}
		}
		if succeeded {
			g.SuccessfulSubmitters++
		} else {
			g.UnsuccessfulSubmitters++
		}
	}

	if g.Submitters > 0 {
		n := float64(g.Submitters)
		g.AvgSubmissions = float64(totalSubs) / n
		g.AvgSuccesses = float64(totalSuccesses) / n
		g.AvgErrors = float64(totalErrors) / n
	}
	return g
}
