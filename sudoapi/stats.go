package sudoapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/stats"
	"golang.org/x/sync/errgroup"
)

// StudentActivityStats summarizes one student's submissions on one activity.
func (s *BaseAPI) StudentActivityStats(ctx context.Context, userID, activityID int) (stats.StudentSummary, *StatusError) {
	subs, err := s.db.Submissions(ctx, codebench.SubmissionFilter{
		UserID: &userID, ActivityID: &activityID,
	})
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch submissions", slog.Any("err", err))
		return stats.StudentSummary{}, ErrUnknownError
	}
	return stats.PerStudent(subs), nil
}

// CourseProgress computes a student's points total across a set of
// activities. Activities and submissions are fetched concurrently.
func (s *BaseAPI) CourseProgress(ctx context.Context, userID int, activityIDs []int) (stats.ProgressSummary, *StatusError) {
	var (
		activities []*codebench.Activity
		subs       []*codebench.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.db.Activities(gctx, activityIDs)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = s.db.Submissions(gctx, codebench.SubmissionFilter{
			UserID: &userID, ActivityIDs: activityIDs,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Couldn't fetch progress data", slog.Any("err", err))
		return stats.ProgressSummary{}, ErrUnknownError
	}

	byActivity := make(map[int][]*codebench.Submission)
	for _, sub := range subs {
		byActivity[sub.ActivityID] = append(byActivity[sub.ActivityID], sub)
	}
	return stats.ActivityProgress(activities, byActivity), nil
}

// GroupedStats aggregates submissions for a roster of students over a set
// of activities, bucketed by the given key. A nil date keeps all days.
func (s *BaseAPI) GroupedStats(ctx context.Context, userIDs []int, activityIDs []int, date *time.Time, groupBy stats.GroupBy) ([]*stats.GroupSummary, *StatusError) {
	if len(userIDs) == 0 || len(activityIDs) == 0 {
		return []*stats.GroupSummary{}, nil
	}

	var (
		activities []*codebench.Activity
		subs       []*codebench.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.db.Activities(gctx, activityIDs)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = s.db.Submissions(gctx, codebench.SubmissionFilter{
			UserIDs: userIDs, ActivityIDs: activityIDs,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Couldn't fetch grouped stats data", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	groups, err := stats.Grouped(userIDs, activities, subs, date, groupBy)
	if err != nil {
		return nil, WrapError(err, "Couldn't group submissions")
	}
	return groups, nil
}
