package sudoapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/archive"
	"github.com/google/uuid"
)

// Submission stuff

func (s *BaseAPI) Submission(ctx context.Context, id int) (*codebench.Submission, *StatusError) {
	sub, err := s.db.Submission(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch submission", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if sub == nil {
		return nil, Statusf(404, "Couldn't find submission")
	}
	return sub, nil
}

func (s *BaseAPI) Submissions(ctx context.Context, filter codebench.SubmissionFilter) ([]*codebench.Submission, *StatusError) {
	subs, err := s.db.Submissions(ctx, filter)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, WrapError(err, "Context canceled")
		}
		slog.WarnContext(ctx, "Couldn't fetch submissions", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return subs, nil
}

// CreateSubmission packs the student's files, stores the blob and persists
// the PENDING row, then hands the submission to the execution queue. The
// persist and the dispatch are deliberately separate steps: if the queue is
// down the submission stays PENDING and the caller gets a 503, nothing is
// rolled back and nothing retries automatically.
func (s *BaseAPI) CreateSubmission(ctx context.Context, userID, activityID int, files map[string]string, manifest archive.Manifest) (*codebench.Submission, *StatusError) {
	if userID <= 0 || len(files) == 0 {
		return nil, ErrMissingRequired
	}
	activity, err := s.db.Activity(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch activity", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if activity == nil {
		return nil, Statusf(404, "Couldn't find activity")
	}

	blob, err := archive.PackBytes(files, manifest)
	if err != nil {
		return nil, WrapError(err, "Couldn't pack solution archive")
	}
	key := uuid.NewString() + ".tar.gz"
	if err := s.solutionBucket.WriteFile(key, bytes.NewReader(blob), 0644); err != nil {
		slog.WarnContext(ctx, "Couldn't store solution archive", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	sub, err := s.db.CreateSubmission(ctx, activityID, userID, key)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't create submission", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	if err := s.dispatcher.Dispatch(ctx, sub.ID, activity.Language); err != nil {
		slog.WarnContext(ctx, "Couldn't dispatch submission", slog.Int("submission", sub.ID), slog.Any("err", err))
		return sub, Statusf(503, "Execution queue unavailable, submission stays pending")
	}

	if err := s.db.UpdateSubmission(ctx, sub.ID, codebench.SubmissionUpdate{Status: codebench.StatusEnqueued}); err != nil {
		slog.WarnContext(ctx, "Couldn't mark submission enqueued", slog.Any("err", err))
		return sub, ErrUnknownError
	}
	sub.Status = codebench.StatusEnqueued
	return sub, nil
}

// RequeueStuck re-dispatches submissions that never reached the executor.
// A submission stays PENDING when the queue was down at creation time, and
// ENQUEUED messages expire from the broker after an hour, so both states
// are fair game. Returns the number of submissions re-dispatched.
func (s *BaseAPI) RequeueStuck(ctx context.Context, olderThan time.Duration) (int, *StatusError) {
	subs, err := s.db.Submissions(ctx, codebench.SubmissionFilter{Ordering: "id", Ascending: true})
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch submissions", slog.Any("err", err))
		return 0, ErrUnknownError
	}

	cutoff := time.Now().Add(-olderThan)
	var count int
	for _, sub := range subs {
		if sub.Status != codebench.StatusPending && sub.Status != codebench.StatusEnqueued {
			continue
		}
		if sub.CreatedAt.After(cutoff) {
			continue
		}
		activity, err := s.db.Activity(ctx, sub.ActivityID)
		if err != nil || activity == nil {
			slog.WarnContext(ctx, "Couldn't fetch activity for requeue", slog.Int("submission", sub.ID), slog.Any("err", err))
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, sub.ID, activity.Language); err != nil {
			slog.WarnContext(ctx, "Couldn't re-dispatch submission", slog.Int("submission", sub.ID), slog.Any("err", err))
			continue
		}
		if err := s.db.UpdateSubmission(ctx, sub.ID, codebench.SubmissionUpdate{Status: codebench.StatusEnqueued}); err != nil {
			slog.WarnContext(ctx, "Couldn't mark submission enqueued", slog.Any("err", err))
		}
		count++
	}
	return count, nil
}

// MarkProcessing is called when the executor picks the submission up.
func (s *BaseAPI) MarkProcessing(ctx context.Context, subID int) *StatusError {
	sub, serr := s.Submission(ctx, subID)
	if serr != nil {
		return serr
	}
	if sub.Status.Terminal() {
		return Statusf(409, "Submission already finished execution")
	}
	if err := s.db.UpdateSubmission(ctx, sub.ID, codebench.SubmissionUpdate{Status: codebench.StatusProcessing}); err != nil {
		slog.WarnContext(ctx, "Couldn't mark submission processing", slog.Any("err", err))
		return ErrUnknownError
	}
	return nil
}

// SolutionFiles unpacks the stored archive of a submission.
func (s *BaseAPI) SolutionFiles(ctx context.Context, sub *codebench.Submission) (map[string]string, archive.Manifest, *StatusError) {
	blob, err := s.solutionBucket.ReadBlob(sub.ArchiveKey)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't read solution archive", slog.Any("err", err))
		return nil, nil, WrapError(err, "Couldn't read solution archive")
	}
	files, manifest, err := archive.UnpackBytes(blob)
	if err != nil {
		return nil, nil, WrapError(err, "Couldn't unpack solution archive")
	}
	return files, manifest, nil
}

// MarkFinalSolution designates the submission as the student's graded
// attempt, displacing any previous final solution for the pair atomically.
func (s *BaseAPI) MarkFinalSolution(ctx context.Context, userID, subID int) *StatusError {
	sub, serr := s.Submission(ctx, subID)
	if serr != nil {
		return serr
	}
	if sub.UserID != userID {
		return Statusf(403, "Can't finalize someone else's submission")
	}
	if err := s.db.MarkFinalSubmission(ctx, sub.ActivityID, sub.UserID, sub.ID); err != nil {
		if errors.Is(err, codebench.ErrNotFound) {
			return ErrNotFound
		}
		slog.WarnContext(ctx, "Couldn't mark final solution", slog.Any("err", err))
		return ErrUnknownError
	}
	return nil
}

func (s *BaseAPI) FinalSolution(ctx context.Context, activityID, userID int) (*codebench.Submission, *StatusError) {
	sub, err := s.db.FinalSubmission(ctx, activityID, userID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch final solution", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if sub == nil {
		return nil, Statusf(404, "No final solution designated")
	}
	return sub, nil
}
