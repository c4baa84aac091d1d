package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/jackc/pgx/v5"
)

type dbSubmission struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ActivityID int    `db:"activity_id"`
	UserID     int    `db:"user_id"`
	ArchiveKey string `db:"archive_key"`

	Status  string `db:"status"`
	IsFinal bool   `db:"is_final"`
}

func (s *DB) Submission(ctx context.Context, id int) (*codebench.Submission, error) {
	var sub dbSubmission
	err := Get(s.conn, ctx, &sub, "SELECT * FROM submissions WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s.internalToSubmission(&sub), err
}

func (s *DB) Submissions(ctx context.Context, filter codebench.SubmissionFilter) ([]*codebench.Submission, error) {
	// A present-but-empty activity set matches nothing. Without this,
	// statistics over an empty course would degenerate into a full scan.
	if filter.ActivityIDs != nil && len(filter.ActivityIDs) == 0 {
		return []*codebench.Submission{}, nil
	}
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return []*codebench.Submission{}, nil
	}

	var subs []*dbSubmission
	fb := newFilterBuilder()
	subFilterQuery(&filter, fb)

	query := fmt.Sprintf("SELECT * FROM submissions WHERE %s %s %s", fb.Where(), getSubmissionOrdering(filter.Ordering, filter.Ascending), FormatLimitOffset(filter.Limit, filter.Offset))
	err := Select(s.conn, ctx, &subs, query, fb.Args()...)
	if errors.Is(err, context.Canceled) {
		return []*codebench.Submission{}, nil
	} else if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch submissions", slog.Any("err", err))
		return []*codebench.Submission{}, err
	}
	return mapper(subs, s.internalToSubmission), nil
}

func (s *DB) SubmissionCount(ctx context.Context, filter codebench.SubmissionFilter) (int, error) {
	fb := newFilterBuilder()
	subFilterQuery(&filter, fb)
	var val int
	err := s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM submissions WHERE "+fb.Where(), fb.Args()...).Scan(&val)
	if err != nil {
		return -1, err
	}
	return val, nil
}

const createSubQuery = "INSERT INTO submissions (activity_id, user_id, archive_key, status) VALUES ($1, $2, $3, $4) RETURNING id;"

// CreateSubmission inserts a fresh PENDING, non-final submission and returns
// its row.
func (s *DB) CreateSubmission(ctx context.Context, activityID, userID int, archiveKey string) (*codebench.Submission, error) {
	if activityID <= 0 || userID <= 0 || archiveKey == "" {
		return nil, codebench.ErrMissingRequired
	}
	var id int
	if err := s.conn.QueryRow(ctx, createSubQuery, activityID, userID, archiveKey, codebench.StatusPending).Scan(&id); err != nil {
		return nil, err
	}
	return s.Submission(ctx, id)
}

// UpdateSubmission is a dumb setter: it applies whatever update it is given
// and bumps updated_at. What the next status should be is decided elsewhere.
func (s *DB) UpdateSubmission(ctx context.Context, id int, upd codebench.SubmissionUpdate) error {
	return s.BulkUpdateSubmissions(ctx, codebench.SubmissionFilter{ID: &id}, upd)
}

func (s *DB) BulkUpdateSubmissions(ctx context.Context, filter codebench.SubmissionFilter, upd codebench.SubmissionUpdate) error {
	ub := newUpdateBuilder()
	subUpdateQuery(&upd, ub)
	if ub.CheckUpdates() != nil {
		return ub.CheckUpdates()
	}
	ub.AddUpdate("updated_at = NOW()")
	fb := ub.MakeFilter()
	subFilterQuery(&filter, fb)
	_, err := s.conn.Exec(ctx, `UPDATE submissions SET `+fb.WithUpdate(), fb.Args()...)
	return err
}

// MarkFinalSubmission flips the final-solution flag to the given submission.
// The previous final submission for the (activity, user) pair, if any, is
// unset in the same transaction, keeping at most one final per pair.
func (s *DB) MarkFinalSubmission(ctx context.Context, activityID, userID, subID int) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "UPDATE submissions SET is_final = false, updated_at = NOW() WHERE activity_id = $1 AND user_id = $2 AND is_final = true", activityID, userID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "UPDATE submissions SET is_final = true, updated_at = NOW() WHERE id = $1 AND activity_id = $2 AND user_id = $3", subID, activityID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return codebench.ErrNotFound
	}

	return tx.Commit(ctx)
}

// FinalSubmission returns the final solution for the pair, or nil. If legacy
// data ever holds duplicates, the newest one wins, deterministically.
func (s *DB) FinalSubmission(ctx context.Context, activityID, userID int) (*codebench.Submission, error) {
	var sub dbSubmission
	err := Get(s.conn, ctx, &sub, "SELECT * FROM submissions WHERE activity_id = $1 AND user_id = $2 AND is_final = true ORDER BY id DESC LIMIT 1", activityID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s.internalToSubmission(&sub), err
}

func subFilterQuery(filter *codebench.SubmissionFilter, fb *filterBuilder) {
	if v := filter.ID; v != nil {
		fb.AddConstraint("id = %s", v)
	}
	if v := filter.IDs; v != nil && len(v) == 0 {
		fb.AddConstraint("id = -1")
	}
	if v := filter.IDs; len(v) > 0 {
		fb.AddConstraint("id = ANY(%s)", v)
	}
	if v := filter.UserID; v != nil {
		fb.AddConstraint("user_id = %s", v)
	}
	if v := filter.UserIDs; len(v) > 0 {
		fb.AddConstraint("user_id = ANY(%s)", v)
	}
	if v := filter.ActivityID; v != nil {
		fb.AddConstraint("activity_id = %s", v)
	}
	if v := filter.ActivityIDs; len(v) > 0 {
		fb.AddConstraint("activity_id = ANY(%s)", v)
	}
	if v := filter.Status; v != "" {
		fb.AddConstraint("status = %s", v)
	}
	if v := filter.IsFinal; v != nil {
		fb.AddConstraint("is_final = %s", v)
	}
}

func subUpdateQuery(upd *codebench.SubmissionUpdate, b *updateBuilder) {
	if v := upd.Status; v != "" {
		b.AddUpdate("status = %s", v)
	}
	if v := upd.IsFinal; v != nil {
		b.AddUpdate("is_final = %s", v)
	}
}

func getSubmissionOrdering(ordering string, ascending bool) string {
	ord := " DESC"
	if ascending {
		ord = " ASC"
	}
	switch ordering {
	case "updated_at":
		return "ORDER BY updated_at" + ord + ", id DESC"
	default:
		return "ORDER BY id" + ord
	}
}

func (s *DB) internalToSubmission(sub *dbSubmission) *codebench.Submission {
	if sub == nil {
		return nil
	}

	return &codebench.Submission{
		ID:         sub.ID,
		CreatedAt:  sub.CreatedAt,
		UpdatedAt:  sub.UpdatedAt,
		ActivityID: sub.ActivityID,
		UserID:     sub.UserID,
		ArchiveKey: sub.ArchiveKey,
		Status:     codebench.Status(sub.Status),
		IsFinal:    sub.IsFinal,
	}
}
