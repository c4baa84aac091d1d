package stats_test

import (
	"testing"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/stats"
	"github.com/shopspring/decimal"
)

func sub(id, userID, activityID int, status codebench.Status, created time.Time) *codebench.Submission {
	return &codebench.Submission{
		ID:         id,
		UserID:     userID,
		ActivityID: activityID,
		Status:     status,
		CreatedAt:  created,
	}
}

var day = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestPerStudent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		sum := stats.PerStudent(nil)
		if sum.Total != 0 || sum.BestStatus != "" || !sum.LastSubmission.IsZero() {
			t.Errorf("empty set should be all zero: %+v", sum)
		}
	})

	t.Run("best status by rank", func(t *testing.T) {
		sum := stats.PerStudent([]*codebench.Submission{
			sub(1, 1, 1, codebench.StatusFailure, day),
			sub(2, 1, 1, codebench.StatusSuccess, day.Add(time.Hour)),
			sub(3, 1, 1, codebench.StatusPending, day.Add(2*time.Hour)),
		})
		if sum.BestStatus != codebench.StatusSuccess {
			t.Errorf("best status = %s, expected SUCCESS", sum.BestStatus)
		}
		if sum.Total != 3 || sum.Success != 1 || sum.Failure != 1 {
			t.Errorf("counts wrong: %+v", sum)
		}
		if !sum.LastSubmission.Equal(day.Add(2 * time.Hour)) {
			t.Errorf("last submission = %s", sum.LastSubmission)
		}
	})

	t.Run("error counters", func(t *testing.T) {
		sum := stats.PerStudent([]*codebench.Submission{
			sub(1, 1, 1, codebench.StatusBuildError, day),
			sub(2, 1, 1, codebench.StatusRuntimeError, day),
			sub(3, 1, 1, codebench.StatusRuntimeError, day),
		})
		if sum.BuildError != 1 || sum.RuntimeError != 2 {
			t.Errorf("counts wrong: %+v", sum)
		}
	})
}

func TestActivityProgress(t *testing.T) {
	acts := []*codebench.Activity{
		{ID: 1, Points: decimal.NewFromInt(10)},
		{ID: 2, Points: decimal.NewFromInt(5)},
		{ID: 3, Points: decimal.NewFromInt(20)},
	}
	subsByActivity := map[int][]*codebench.Submission{
		// Solved with a failure and two successes: points awarded once.
		1: {
			sub(1, 1, 1, codebench.StatusFailure, day),
			sub(2, 1, 1, codebench.StatusSuccess, day),
			sub(3, 1, 1, codebench.StatusSuccess, day),
		},
		// Started but never solved.
		2: {sub(4, 1, 2, codebench.StatusRuntimeError, day)},
		// Activity 3: untouched.
	}

	sum := stats.ActivityProgress(acts, subsByActivity)
	if sum.Solved != 1 || sum.Started != 1 || sum.NotStarted != 1 {
		t.Errorf("classification wrong: %+v", sum)
	}
	if !sum.PointsObtained.Equal(decimal.NewFromInt(10)) {
		t.Errorf("points obtained = %s, expected 10 (awarded once)", sum.PointsObtained)
	}
	if !sum.TotalPossible.Equal(decimal.NewFromInt(35)) {
		t.Errorf("total possible = %s, expected 35", sum.TotalPossible)
	}
}

func TestGroupedByUserEmptySubmissions(t *testing.T) {
	acts := []*codebench.Activity{{ID: 1}, {ID: 2}}
	groups, err := stats.Grouped([]int{7, 8, 9}, acts, nil, nil, stats.GroupByUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected one bucket per roster student, got %d", len(groups))
	}
	for _, g := range groups {
		if g.Summary.Total != 0 || g.Submitters != 0 {
			t.Errorf("bucket %s not empty: %+v", g.Key, g)
		}
		if g.AvgSubmissions != 0 || g.AvgSuccesses != 0 || g.AvgErrors != 0 {
			t.Errorf("bucket %s averages must be 0, not NaN: %+v", g.Key, g)
		}
	}
}

func TestGroupedByActivity(t *testing.T) {
	acts := []*codebench.Activity{{ID: 1}, {ID: 2}}
	subs := []*codebench.Submission{
		sub(1, 7, 1, codebench.StatusSuccess, day),
		sub(2, 8, 1, codebench.StatusFailure, day),
		sub(3, 8, 1, codebench.StatusFailure, day),
		// Outside the roster, must be ignored.
		sub(4, 99, 1, codebench.StatusSuccess, day),
		// Outside the activity set, must be ignored.
		sub(5, 7, 42, codebench.StatusSuccess, day),
	}
	groups, err := stats.Grouped([]int{7, 8}, acts, subs, nil, stats.GroupByActivity)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(groups))
	}

	g := groups[0]
	if g.Key != "1" {
		t.Fatalf("first bucket key = %q", g.Key)
	}
	if g.Submitters != 2 || g.SuccessfulSubmitters != 1 || g.UnsuccessfulSubmitters != 1 {
		t.Errorf("submitter counts wrong: %+v", g)
	}
	if g.Summary.Total != 3 {
		t.Errorf("total = %d, expected 3", g.Summary.Total)
	}
	// 3 submissions over 2 submitters.
	if g.AvgSubmissions != 1.5 {
		t.Errorf("avg submissions = %v, expected 1.5", g.AvgSubmissions)
	}
	if g.AvgSuccesses != 0.5 {
		t.Errorf("avg successes = %v, expected 0.5", g.AvgSuccesses)
	}

	if groups[1].Summary.Total != 0 {
		t.Errorf("activity 2 bucket should be empty: %+v", groups[1])
	}
}

func TestGroupedByDate(t *testing.T) {
	acts := []*codebench.Activity{{ID: 1}}
	nextDay := day.Add(24 * time.Hour)
	subs := []*codebench.Submission{
		sub(1, 7, 1, codebench.StatusFailure, day),
		sub(2, 7, 1, codebench.StatusSuccess, nextDay),
		sub(3, 8, 1, codebench.StatusBuildError, nextDay),
	}

	groups, err := stats.Grouped([]int{7, 8}, acts, subs, nil, stats.GroupByDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 date buckets, got %d", len(groups))
	}
	if groups[0].Key != "2026-03-14" || groups[1].Key != "2026-03-15" {
		t.Fatalf("keys = %q, %q", groups[0].Key, groups[1].Key)
	}
	if groups[1].Submitters != 2 || groups[1].AvgErrors != 0.5 {
		t.Errorf("second day wrong: %+v", groups[1])
	}

	t.Run("date filter", func(t *testing.T) {
		groups, err := stats.Grouped([]int{7, 8}, acts, subs, &nextDay, stats.GroupByDate)
		if err != nil {
			t.Fatal(err)
		}
		if len(groups) != 1 || groups[0].Key != "2026-03-15" {
			t.Fatalf("filter should leave one bucket, got %+v", groups)
		}
		if groups[0].Summary.Total != 2 {
			t.Errorf("filtered bucket total = %d", groups[0].Summary.Total)
		}
	})
}

func TestGroupedUnknownKey(t *testing.T) {
	if _, err := stats.Grouped(nil, nil, nil, nil, stats.GroupBy("course")); err == nil {
		t.Error("unknown grouping must be rejected")
	}
}
